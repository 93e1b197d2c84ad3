package edmx

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoConceptualModel is returned when a document has no CSDL schema.
var ErrNoConceptualModel = errors.New("edmx: document has no conceptual model")

// StoreGeneratedPattern says how the store fills a property.
type StoreGeneratedPattern int

const (
	StoreGeneratedNone StoreGeneratedPattern = iota
	StoreGeneratedIdentity
	StoreGeneratedComputed
)

var storeGeneratedPatterns = map[string]StoreGeneratedPattern{
	"None":     StoreGeneratedNone,
	"Identity": StoreGeneratedIdentity,
	"Computed": StoreGeneratedComputed,
}

// Access is the visibility generated code gives a member.
type Access int

const (
	AccessPublic Access = iota
	AccessInternal
	AccessProtected
	AccessPrivate
)

var accessValues = map[string]Access{
	"Public":    AccessPublic,
	"Internal":  AccessInternal,
	"Protected": AccessProtected,
	"Private":   AccessPrivate,
}

// ConceptualModel is the CSDL part of a designer file.
type ConceptualModel struct {
	Namespace    string
	Alias        string
	Container    string
	EntityTypes  []*EntityType
	Associations []*Association
}

// EntityType returns the entity type with the given name, or nil.
func (m *ConceptualModel) EntityType(name string) *EntityType {
	for _, t := range m.EntityTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// EntityType is a CSDL entity type.
type EntityType struct {
	Name                 string
	BaseType             string
	Abstract             bool
	Access               Access
	Documentation        string
	Keys                 []string
	Properties           []*Property
	NavigationProperties []*NavigationProperty
}

// Property is a scalar property of an entity type.
type Property struct {
	Name          string
	Type          string
	Nullable      bool
	MaxLength     int
	FixedLength   bool
	Unicode       bool
	DefaultValue  string
	Generated     StoreGeneratedPattern
	GetterAccess  Access
	SetterAccess  Access
	Documentation string
}

// NavigationProperty follows an association from an entity type.
type NavigationProperty struct {
	Name         string
	Relationship string
	FromRole     string
	ToRole       string
}

// Association relates two entity types.
type Association struct {
	Name string
	Ends []AssociationEnd
}

// AssociationEnd is one side of an association.
type AssociationEnd struct {
	Role         string
	Type         string
	Multiplicity Cardinality
}

// ReadConceptualModel reads the conceptual model of an .edmx document.
func ReadConceptualModel(r io.Reader) (*ConceptualModel, error) {
	root, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if !root.Is("Edmx", EDMXNamespace) {
		return nil, fmt.Errorf("edmx: root element is {%s}%s", root.XMLName.Space, root.XMLName.Local)
	}

	schema := root.
		Element("Runtime", EDMXNamespace).
		Element("ConceptualModels", EDMXNamespace).
		Element("Schema", CSDLNamespace)
	if schema == nil {
		return nil, ErrNoConceptualModel
	}
	return readSchema(schema)
}

func readSchema(schema *Element) (*ConceptualModel, error) {
	m := &ConceptualModel{}
	SetString(schema, "Namespace", func(v string) { m.Namespace = v })
	SetString(schema, "Alias", func(v string) { m.Alias = v })
	if c := schema.Element("EntityContainer", CSDLNamespace); c != nil {
		SetString(c, "Name", func(v string) { m.Container = v })
	}

	for _, e := range schema.Elements("EntityType", CSDLNamespace) {
		t, err := readEntityType(e)
		if err != nil {
			return nil, err
		}
		m.EntityTypes = append(m.EntityTypes, t)
	}
	for _, e := range schema.Elements("Association", CSDLNamespace) {
		a, err := readAssociation(e)
		if err != nil {
			return nil, err
		}
		m.Associations = append(m.Associations, a)
	}
	return m, nil
}

func readEntityType(e *Element) (*EntityType, error) {
	t := &EntityType{}
	SetString(e, "Name", func(v string) { t.Name = v })
	SetString(e, "BaseType", func(v string) { t.BaseType = Name(v) })
	if err := SetBool(e, "Abstract", func(v bool) { t.Abstract = v }); err != nil {
		return nil, err
	}
	if err := SetEnum(e, "TypeAccess", CodeGenerationNamespace, accessValues, func(v Access) { t.Access = v }); err != nil {
		return nil, err
	}
	if doc := e.Element("Documentation", CSDLNamespace); doc != nil {
		SetStringFromElement(doc, "Summary", CSDLNamespace, func(v string) { t.Documentation = v })
	}

	for _, ref := range e.Element("Key", CSDLNamespace).Elements("PropertyRef", CSDLNamespace) {
		SetString(ref, "Name", func(v string) { t.Keys = append(t.Keys, v) })
	}
	for _, pe := range e.Elements("Property", CSDLNamespace) {
		p, err := readProperty(pe)
		if err != nil {
			return nil, fmt.Errorf("entity type %s: %w", t.Name, err)
		}
		t.Properties = append(t.Properties, p)
	}
	for _, ne := range e.Elements("NavigationProperty", CSDLNamespace) {
		n := &NavigationProperty{}
		SetString(ne, "Name", func(v string) { n.Name = v })
		SetString(ne, "Relationship", func(v string) { n.Relationship = Name(v) })
		SetString(ne, "FromRole", func(v string) { n.FromRole = v })
		SetString(ne, "ToRole", func(v string) { n.ToRole = v })
		t.NavigationProperties = append(t.NavigationProperties, n)
	}
	return t, nil
}

func readProperty(e *Element) (*Property, error) {
	p := &Property{Nullable: true, Unicode: true}
	SetString(e, "Name", func(v string) { p.Name = v })
	SetString(e, "Type", func(v string) { p.Type = v })
	SetString(e, "DefaultValue", func(v string) { p.DefaultValue = v })
	if doc := e.Element("Documentation", CSDLNamespace); doc != nil {
		SetStringFromElement(doc, "Summary", CSDLNamespace, func(v string) { p.Documentation = v })
	}

	for _, set := range []func() error{
		func() error { return SetBool(e, "Nullable", func(v bool) { p.Nullable = v }) },
		func() error { return SetInt(e, "MaxLength", func(v int) { p.MaxLength = v }) },
		func() error { return SetBool(e, "FixedLength", func(v bool) { p.FixedLength = v }) },
		func() error { return SetBool(e, "Unicode", func(v bool) { p.Unicode = v }) },
		func() error {
			return SetEnum(e, "StoreGeneratedPattern", AnnotationNamespace, storeGeneratedPatterns,
				func(v StoreGeneratedPattern) { p.Generated = v })
		},
		func() error {
			return SetEnum(e, "GetterAccess", CodeGenerationNamespace, accessValues, func(v Access) { p.GetterAccess = v })
		},
		func() error {
			return SetEnum(e, "SetterAccess", CodeGenerationNamespace, accessValues, func(v Access) { p.SetterAccess = v })
		},
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func readAssociation(e *Element) (*Association, error) {
	a := &Association{}
	SetString(e, "Name", func(v string) { a.Name = v })
	for _, end := range e.Elements("End", CSDLNamespace) {
		var ae AssociationEnd
		SetString(end, "Role", func(v string) { ae.Role = v })
		SetString(end, "Type", func(v string) { ae.Type = Name(v) })
		if err := SetCardinality(end, func(c Cardinality) { ae.Multiplicity = c }); err != nil {
			return nil, fmt.Errorf("association %s: %w", a.Name, err)
		}
		a.Ends = append(a.Ends, ae)
	}
	return a, nil
}
