package typesys

// File is a ParsedFile built by a parser or by hand.
type File struct {
	Name    string
	Package string
	Types   []*Type
}

var _ ParsedFile = (*File)(nil)

// FileName returns the parsed file's name.
func (f *File) FileName() string { return f.Name }

// TopLevelTypeDefinitions returns the file's types in declaration order.
func (f *File) TopLevelTypeDefinitions() []TypeDefinition {
	if f == nil {
		return nil
	}
	out := make([]TypeDefinition, len(f.Types))
	for i, t := range f.Types {
		out[i] = t
	}
	return out
}

// Type looks up a top-level type by name.
func (f *File) Type(name string) *Type {
	for _, t := range f.Types {
		if t.TypeName == name {
			return t
		}
	}
	return nil
}

// Type is a TypeDefinition.
type Type struct {
	TypeName  string
	Qualifier string
	TypeKind  Kind
	Span      Region
	Synthetic bool
	Nested    []*Type
	Fields    []*MemberDef
}

var _ TypeDefinition = (*Type)(nil)

func (t *Type) Name() string      { return t.TypeName }
func (t *Type) Kind() Kind        { return t.TypeKind }
func (t *Type) Region() Region    { return t.Span }
func (t *Type) IsSynthetic() bool { return t.Synthetic }

// FullName returns the name qualified by the package or enclosing type.
func (t *Type) FullName() string {
	if t.Qualifier == "" {
		return t.TypeName
	}
	return t.Qualifier + "." + t.TypeName
}

// NestedTypes returns the types declared inside t.
func (t *Type) NestedTypes() []TypeDefinition {
	out := make([]TypeDefinition, len(t.Nested))
	for i, n := range t.Nested {
		out[i] = n
	}
	return out
}

// Members returns t's fields and methods in declaration order.
func (t *Type) Members() []Member {
	out := make([]Member, len(t.Fields))
	for i, m := range t.Fields {
		out[i] = m
	}
	return out
}

// AddMember appends m and makes t its declaring type.
func (t *Type) AddMember(m *MemberDef) {
	m.Owner = t
	t.Fields = append(t.Fields, m)
}

// AddNested appends a nested type qualified by t.
func (t *Type) AddNested(n *Type) {
	n.Qualifier = t.FullName()
	t.Nested = append(t.Nested, n)
}

// MemberDef is a Member.
type MemberDef struct {
	MemberName string
	MemberKind Kind
	Span       Region
	Synthetic  bool
	Owner      *Type
}

var _ Member = (*MemberDef)(nil)

func (m *MemberDef) Name() string      { return m.MemberName }
func (m *MemberDef) Kind() Kind        { return m.MemberKind }
func (m *MemberDef) Region() Region    { return m.Span }
func (m *MemberDef) IsSynthetic() bool { return m.Synthetic }

// FullName returns the member name qualified by its declaring type.
func (m *MemberDef) FullName() string {
	if m.Owner == nil {
		return m.MemberName
	}
	return m.Owner.FullName() + "." + m.MemberName
}

// DeclaringType returns the type m belongs to, or nil.
func (m *MemberDef) DeclaringType() TypeDefinition {
	if m.Owner == nil {
		return nil
	}
	return m.Owner
}
