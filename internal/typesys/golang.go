package typesys

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"go.uber.org/zap"
)

// GoParser builds ParsedFiles from Go source with tree-sitter.
//
// Named types become top-level types. Struct fields and interface methods
// become members, and methods declared with a receiver are attached to the
// receiver's type. A receiver whose type is declared in another file gets
// a placeholder type with an empty region. Anonymous struct field types
// become nested types of their enclosing type. Blank fields are
// synthetic.
//
// A GoParser is safe for concurrent use; parses are serialized.
type GoParser struct {
	mu     sync.Mutex
	parser *sitter.Parser
	log    *zap.Logger
}

// ParserOption configures a GoParser.
type ParserOption func(*GoParser)

// WithLogger sets the parser's logger.
func WithLogger(log *zap.Logger) ParserOption {
	return func(p *GoParser) {
		if log != nil {
			p.log = log
		}
	}
}

// NewGoParser creates a Go parser.
func NewGoParser(opts ...ParserOption) *GoParser {
	p := &GoParser{
		parser: sitter.NewParser(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.parser.SetLanguage(golang.GetLanguage())
	return p
}

// Close releases the underlying parser.
func (p *GoParser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Parse parses src as the Go file fileName. Syntax errors do not fail the
// parse; declarations tree-sitter could recover are still returned.
func (p *GoParser) Parse(ctx context.Context, fileName string, src []byte) (*File, error) {
	start := time.Now()

	p.mu.Lock()
	if p.parser == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("parse %s: parser closed", fileName)
	}
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.log.Debug("go source has syntax errors", zap.String("file", fileName))
	}

	b := &goBuilder{file: &File{Name: fileName}, src: src}
	b.build(root)

	p.log.Debug("parsed go source",
		zap.String("file", fileName),
		zap.Int("types", len(b.file.Types)),
		zap.Duration("elapsed", time.Since(start)))
	return b.file, nil
}

type goBuilder struct {
	file *File
	src  []byte
}

func (b *goBuilder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func (b *goBuilder) region(n *sitter.Node) Region {
	start, end := n.StartPoint(), n.EndPoint()
	return Region{
		FileName:    b.file.Name,
		BeginLine:   int(start.Row) + 1,
		BeginColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}

func (b *goBuilder) build(root *sitter.Node) {
	var methods []*sitter.Node

	// Types first, so methods can be attached regardless of order.
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "package_clause":
			for j := 0; j < int(n.NamedChildCount()); j++ {
				if c := n.NamedChild(j); c.Type() == "package_identifier" {
					b.file.Package = b.text(c)
				}
			}
		case "type_declaration":
			for j := 0; j < int(n.NamedChildCount()); j++ {
				spec := n.NamedChild(j)
				if spec.Type() == "type_spec" || spec.Type() == "type_alias" {
					if t := b.typeSpec(spec); t != nil {
						b.file.Types = append(b.file.Types, t)
					}
				}
			}
		case "method_declaration":
			methods = append(methods, n)
		}
	}

	for _, n := range methods {
		b.method(n)
	}
}

func (b *goBuilder) typeSpec(spec *sitter.Node) *Type {
	nameNode := spec.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &Type{
		TypeName:  b.text(nameNode),
		Qualifier: b.file.Package,
		TypeKind:  KindType,
		Span:      b.region(spec),
	}
	if spec.Type() == "type_alias" {
		t.TypeKind = KindAlias
		return t
	}

	typeNode := spec.ChildByFieldName("type")
	if typeNode == nil {
		return t
	}
	switch typeNode.Type() {
	case "struct_type":
		t.TypeKind = KindStruct
		b.structFields(t, typeNode)
	case "interface_type":
		t.TypeKind = KindInterface
		b.interfaceMethods(t, typeNode)
	}
	return t
}

func (b *goBuilder) structFields(t *Type, structNode *sitter.Node) {
	list := structNode.ChildByFieldName("fields")
	if list == nil {
		// Older grammars expose the list as the only named child.
		for i := 0; i < int(structNode.NamedChildCount()); i++ {
			if c := structNode.NamedChild(i); c.Type() == "field_declaration_list" {
				list = c
			}
		}
	}
	if list == nil {
		return
	}

	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		typeNode := decl.ChildByFieldName("type")

		var names []*sitter.Node
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			if c := decl.NamedChild(j); c.Type() == "field_identifier" {
				names = append(names, c)
			}
		}

		if len(names) == 0 && typeNode != nil {
			// Embedded field: named after its type.
			t.AddMember(&MemberDef{
				MemberName: embeddedName(b.text(typeNode)),
				MemberKind: KindField,
				Span:       b.region(decl),
			})
			continue
		}

		for _, nameNode := range names {
			name := b.text(nameNode)
			t.AddMember(&MemberDef{
				MemberName: name,
				MemberKind: KindField,
				Span:       b.region(decl),
				Synthetic:  name == "_",
			})
			if typeNode != nil && typeNode.Type() == "struct_type" {
				nested := &Type{
					TypeName: name,
					TypeKind: KindStruct,
					Span:     b.region(typeNode),
				}
				t.AddNested(nested)
				b.structFields(nested, typeNode)
			}
		}
	}
}

func (b *goBuilder) interfaceMethods(t *Type, ifaceNode *sitter.Node) {
	for i := 0; i < int(ifaceNode.NamedChildCount()); i++ {
		elem := ifaceNode.NamedChild(i)
		switch elem.Type() {
		case "method_elem", "method_spec":
			if nameNode := elem.ChildByFieldName("name"); nameNode != nil {
				t.AddMember(&MemberDef{
					MemberName: b.text(nameNode),
					MemberKind: KindMethod,
					Span:       b.region(elem),
				})
			}
		}
	}
}

func (b *goBuilder) method(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	recv := n.ChildByFieldName("receiver")
	if nameNode == nil || recv == nil {
		return
	}
	typeName := b.receiverType(recv)
	if typeName == "" {
		return
	}

	owner := b.file.Type(typeName)
	if owner == nil {
		owner = &Type{TypeName: typeName, Qualifier: b.file.Package, TypeKind: KindType}
		b.file.Types = append(b.file.Types, owner)
	}
	owner.AddMember(&MemberDef{
		MemberName: b.text(nameNode),
		MemberKind: KindMethod,
		Span:       b.region(n),
	})
}

// receiverType returns the base type name of a receiver parameter list,
// stripping pointers and type arguments.
func (b *goBuilder) receiverType(recv *sitter.Node) string {
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		n := param.ChildByFieldName("type")
		for n != nil {
			switch n.Type() {
			case "type_identifier":
				return b.text(n)
			case "pointer_type", "parenthesized_type":
				if n.NamedChildCount() == 0 {
					return ""
				}
				n = n.NamedChild(0)
			case "generic_type":
				n = n.ChildByFieldName("type")
			default:
				return ""
			}
		}
	}
	return ""
}

// embeddedName returns the field name Go gives an embedded type.
func embeddedName(typeText string) string {
	name := typeText
	name = strings.TrimLeft(name, "*")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
