// Package edmx reads Entity Data Model (.edmx) designer files.
//
// Documents are decoded into a generic Element tree whose names carry
// resolved namespace URIs. The Set helpers copy attribute values into a
// model through setter callbacks, calling the setter only when the
// attribute is present, so defaults set beforehand survive.
package edmx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespaces used by designer files.
const (
	EDMXNamespace           = "http://schemas.microsoft.com/ado/2008/10/edmx"
	SSDLNamespace           = "http://schemas.microsoft.com/ado/2009/02/edm/ssdl"
	StoreNamespace          = "http://schemas.microsoft.com/ado/2007/12/edm/EntityStoreSchemaGenerator"
	CSDLNamespace           = "http://schemas.microsoft.com/ado/2008/09/edm"
	CodeGenerationNamespace = "http://schemas.microsoft.com/ado/2006/04/codegeneration"
	AnnotationNamespace     = "http://schemas.microsoft.com/ado/2009/02/edm/annotation"
	MSLNamespace            = "http://schemas.microsoft.com/ado/2008/09/mapping/cs"
)

// ErrUnsupportedValue is wrapped by errors for attribute values a helper
// cannot convert.
var ErrUnsupportedValue = errors.New("unsupported attribute value")

// ValueError reports an attribute value that could not be converted.
type ValueError struct {
	Element string
	Attr    string
	Value   string
	Err     error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("edmx: %s/@%s: %q: %v", e.Element, e.Attr, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// Element is a decoded XML element.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Element `xml:",any"`
	Text     string     `xml:",chardata"`

	// content keeps text and children in document order.
	content []segment
}

type segment struct {
	text  string
	child *Element
}

// UnmarshalXML decodes the element while remembering how its text and
// children interleave.
func (e *Element) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	e.XMLName = start.Name
	e.Attrs = start.Attr
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Element{}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
			e.content = append(e.content, segment{child: child})
		case xml.CharData:
			text := string(t)
			e.Text += text
			e.content = append(e.content, segment{text: text})
		case xml.EndElement:
			return nil
		}
	}
}

// Decode reads one XML document.
func Decode(r io.Reader) (*Element, error) {
	var root Element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("edmx: decode: %w", err)
	}
	return &root, nil
}

// Is reports whether e has the given local name and namespace.
func (e *Element) Is(local, ns string) bool {
	return e != nil && e.XMLName.Local == local && e.XMLName.Space == ns
}

// Attr returns the value of the attribute local in namespace ns. An
// empty ns selects an unqualified attribute.
func (e *Element) Attr(local, ns string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == ns {
			return a.Value, true
		}
	}
	return "", false
}

// Element returns the first child named local in ns, or nil.
func (e *Element) Element(local, ns string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Is(local, ns) {
			return c
		}
	}
	return nil
}

// Elements returns every child named local in ns.
func (e *Element) Elements(local, ns string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Is(local, ns) {
			out = append(out, c)
		}
	}
	return out
}

// Value returns the concatenated text of the element and its descendants
// in document order.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	if len(e.Children) == 0 {
		return e.Text
	}
	var b strings.Builder
	if len(e.content) == 0 {
		b.WriteString(e.Text)
		for _, c := range e.Children {
			b.WriteString(c.Value())
		}
		return b.String()
	}
	for _, part := range e.content {
		if part.child != nil {
			b.WriteString(part.child.Value())
		} else {
			b.WriteString(part.text)
		}
	}
	return b.String()
}

// Name returns the part of a qualified name after the last dot.
func Name(fullName string) string {
	return fullName[strings.LastIndexByte(fullName, '.')+1:]
}

// SetString calls set with the value of the unqualified attribute when it
// is present.
func SetString(e *Element, attr string, set func(string)) {
	SetStringNS(e, attr, "", set)
}

// SetStringNS calls set with the value of the attribute in namespace ns
// when it is present.
func SetStringNS(e *Element, attr, ns string, set func(string)) {
	if v, ok := e.Attr(attr, ns); ok {
		set(v)
	}
}

// SetBool accepts 0, false and False or 1, true and True.
func SetBool(e *Element, attr string, set func(bool)) error {
	v, ok := e.Attr(attr, "")
	if !ok {
		return nil
	}
	switch v {
	case "0", "false", "False":
		set(false)
	case "1", "true", "True":
		set(true)
	default:
		return valueError(e, attr, v, ErrUnsupportedValue)
	}
	return nil
}

// SetInt parses a decimal attribute. The value Max is ignored.
func SetInt(e *Element, attr string, set func(int)) error {
	v, ok := e.Attr(attr, "")
	if !ok || v == "Max" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return valueError(e, attr, v, err)
	}
	set(n)
	return nil
}

// SetEnum looks the attribute value up in values by its exact name.
func SetEnum[T any](e *Element, attr, ns string, values map[string]T, set func(T)) error {
	v, ok := e.Attr(attr, ns)
	if !ok {
		return nil
	}
	t, ok := values[v]
	if !ok {
		return valueError(e, attr, v, ErrUnsupportedValue)
	}
	set(t)
	return nil
}

// SetCardinality reads the Multiplicity attribute.
func SetCardinality(e *Element, set func(Cardinality)) error {
	v, ok := e.Attr("Multiplicity", "")
	if !ok {
		return nil
	}
	c, err := ParseCardinality(v)
	if err != nil {
		return valueError(e, "Multiplicity", v, err)
	}
	set(c)
	return nil
}

// SetStringFromElement calls set with the value of the first child named
// name in ns when there is one.
func SetStringFromElement(e *Element, name, ns string, set func(string)) {
	if c := e.Element(name, ns); c != nil {
		set(c.Value())
	}
}

func valueError(e *Element, attr, value string, err error) error {
	return &ValueError{Element: e.XMLName.Local, Attr: attr, Value: value, Err: err}
}

// Cardinality is the multiplicity of an association end.
type Cardinality int

const (
	ZeroToOne Cardinality = iota
	One
	Many
)

// ParseCardinality converts a Multiplicity value.
func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "0..1":
		return ZeroToOne, nil
	case "1":
		return One, nil
	case "*":
		return Many, nil
	}
	return 0, ErrUnsupportedValue
}

// String returns the Multiplicity spelling.
func (c Cardinality) String() string {
	switch c {
	case ZeroToOne:
		return "0..1"
	case One:
		return "1"
	case Many:
		return "*"
	default:
		return "unknown"
	}
}
