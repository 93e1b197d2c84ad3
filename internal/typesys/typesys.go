// Package typesys describes the type definitions found in a parsed
// source file.
//
// The model is deliberately small: a ParsedFile lists its top-level types,
// every type lists its nested types and members, and every entity carries
// the source Region it was declared at. Consumers such as the bookmark
// margin only need positions and names.
package typesys

import "fmt"

// Kind classifies an entity.
type Kind int

const (
	KindType Kind = iota
	KindStruct
	KindInterface
	KindAlias
	KindField
	KindMethod
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindAlias:
		return "alias"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Region is a span of source text. Lines and columns are 1-based; a region
// whose BeginLine is not positive is empty.
type Region struct {
	FileName    string
	BeginLine   int
	BeginColumn int
	EndLine     int
	EndColumn   int
}

// IsEmpty reports whether the region has no known position.
func (r Region) IsEmpty() bool {
	return r.BeginLine <= 0
}

// String formats the region as file:line:col-line:col.
func (r Region) String() string {
	if r.IsEmpty() {
		return r.FileName + ":?"
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", r.FileName, r.BeginLine, r.BeginColumn, r.EndLine, r.EndColumn)
}

// Entity is anything declared in source.
type Entity interface {
	Name() string
	FullName() string
	Kind() Kind
	Region() Region

	// IsSynthetic reports whether the entity has no user-written
	// declaration of its own.
	IsSynthetic() bool
}

// Member is a field or method of a type.
type Member interface {
	Entity
	DeclaringType() TypeDefinition
}

// TypeDefinition is a declared type.
type TypeDefinition interface {
	Entity
	NestedTypes() []TypeDefinition
	Members() []Member
}

// ParsedFile is the result of parsing one source file.
type ParsedFile interface {
	FileName() string
	TopLevelTypeDefinitions() []TypeDefinition
}
