package edmx

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const blogModel = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="2.0" xmlns:edmx="http://schemas.microsoft.com/ado/2008/10/edmx">
  <edmx:Runtime>
    <edmx:StorageModels>
      <Schema Namespace="BlogModel.Store" xmlns="http://schemas.microsoft.com/ado/2009/02/edm/ssdl" />
    </edmx:StorageModels>
    <edmx:ConceptualModels>
      <Schema Namespace="BlogModel" Alias="Self"
          xmlns:annotation="http://schemas.microsoft.com/ado/2009/02/edm/annotation"
          xmlns:a="http://schemas.microsoft.com/ado/2006/04/codegeneration"
          xmlns="http://schemas.microsoft.com/ado/2008/09/edm">
        <EntityContainer Name="BlogEntities" />
        <EntityType Name="Post" a:TypeAccess="Internal">
          <Documentation><Summary>A blog post.</Summary></Documentation>
          <Key>
            <PropertyRef Name="Id" />
          </Key>
          <Property Name="Id" Type="Int32" Nullable="false" annotation:StoreGeneratedPattern="Identity" />
          <Property Name="Title" Type="String" MaxLength="200" Unicode="False" a:SetterAccess="Private" />
          <Property Name="Body" Type="String" MaxLength="Max" FixedLength="0" />
          <NavigationProperty Name="Comments" Relationship="BlogModel.PostComments" FromRole="Post" ToRole="Comment" />
        </EntityType>
        <EntityType Name="Comment" BaseType="BlogModel.Entry" Abstract="true" />
        <Association Name="PostComments">
          <End Role="Post" Type="BlogModel.Post" Multiplicity="1" />
          <End Role="Comment" Type="BlogModel.Comment" Multiplicity="*" />
        </Association>
      </Schema>
    </edmx:ConceptualModels>
  </edmx:Runtime>
</edmx:Edmx>`

func TestReadConceptualModel(t *testing.T) {
	m, err := ReadConceptualModel(strings.NewReader(blogModel))
	if err != nil {
		t.Fatalf("ReadConceptualModel error = %v", err)
	}

	want := &ConceptualModel{
		Namespace: "BlogModel",
		Alias:     "Self",
		Container: "BlogEntities",
		EntityTypes: []*EntityType{
			{
				Name:          "Post",
				Access:        AccessInternal,
				Documentation: "A blog post.",
				Keys:          []string{"Id"},
				Properties: []*Property{
					{Name: "Id", Type: "Int32", Nullable: false, Unicode: true, Generated: StoreGeneratedIdentity},
					{Name: "Title", Type: "String", Nullable: true, MaxLength: 200, Unicode: false, SetterAccess: AccessPrivate},
					{Name: "Body", Type: "String", Nullable: true, Unicode: true},
				},
				NavigationProperties: []*NavigationProperty{
					{Name: "Comments", Relationship: "PostComments", FromRole: "Post", ToRole: "Comment"},
				},
			},
			{Name: "Comment", BaseType: "Entry", Abstract: true},
		},
		Associations: []*Association{
			{Name: "PostComments", Ends: []AssociationEnd{
				{Role: "Post", Type: "Post", Multiplicity: One},
				{Role: "Comment", Type: "Comment", Multiplicity: Many},
			}},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
	if m.EntityType("Comment") == nil || m.EntityType("Missing") != nil {
		t.Error("EntityType lookup mismatch")
	}
}

func TestReadConceptualModel_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "no conceptual model",
			doc:  `<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2008/10/edmx"><edmx:Runtime/></edmx:Edmx>`,
			want: ErrNoConceptualModel,
		},
		{
			name: "bad bool",
			doc: `<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2008/10/edmx"><edmx:Runtime><edmx:ConceptualModels>
<Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm"><EntityType Name="X" Abstract="yes"/></Schema>
</edmx:ConceptualModels></edmx:Runtime></edmx:Edmx>`,
			want: ErrUnsupportedValue,
		},
		{
			name: "bad multiplicity",
			doc: `<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2008/10/edmx"><edmx:Runtime><edmx:ConceptualModels>
<Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm"><Association Name="A"><End Multiplicity="2"/></Association></Schema>
</edmx:ConceptualModels></edmx:Runtime></edmx:Edmx>`,
			want: ErrUnsupportedValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConceptualModel(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadConceptualModel error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadConceptualModel(strings.NewReader(`<Other/>`)); err == nil {
		t.Error("foreign root error = nil")
	}
	if _, err := ReadConceptualModel(strings.NewReader(`<broken`)); err == nil {
		t.Error("malformed document error = nil")
	}
}

func TestName(t *testing.T) {
	tests := map[string]string{
		"BlogModel.Post": "Post",
		"A.B.C":          "C",
		"Plain":          "Plain",
		"Trailing.":      "",
	}
	for in, want := range tests {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func element(t *testing.T, doc string) *Element {
	t.Helper()
	e, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	return e
}

func TestSetHelpers(t *testing.T) {
	e := element(t, `<E xmlns:x="urn:x" s="str" x:s="ns" t="True" f="0" bad="maybe" n="42" max="Max" nan="four" >
<Child>hello <b>world</b></Child></E>`)

	var s string
	SetString(e, "s", func(v string) { s = v })
	if s != "str" {
		t.Errorf("SetString = %q", s)
	}
	SetStringNS(e, "s", "urn:x", func(v string) { s = v })
	if s != "ns" {
		t.Errorf("SetStringNS = %q", s)
	}
	SetString(e, "absent", func(string) { t.Error("setter called for absent attribute") })

	b := false
	if err := SetBool(e, "t", func(v bool) { b = v }); err != nil || !b {
		t.Errorf("SetBool(t) = %v, %v", b, err)
	}
	if err := SetBool(e, "f", func(v bool) { b = v }); err != nil || b {
		t.Errorf("SetBool(f) = %v, %v", b, err)
	}
	var verr *ValueError
	if err := SetBool(e, "bad", func(bool) {}); !errors.As(err, &verr) || verr.Value != "maybe" {
		t.Errorf("SetBool(bad) error = %v", err)
	}

	n := -1
	if err := SetInt(e, "n", func(v int) { n = v }); err != nil || n != 42 {
		t.Errorf("SetInt(n) = %d, %v", n, err)
	}
	if err := SetInt(e, "max", func(v int) { n = v }); err != nil || n != 42 {
		t.Errorf("SetInt(max) = %d, %v, want Max ignored", n, err)
	}
	if err := SetInt(e, "nan", func(int) {}); err == nil {
		t.Error("SetInt(nan) error = nil")
	}

	colors := map[string]int{"Red": 1}
	if err := SetEnum(e, "s", "", colors, func(int) {}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("SetEnum unknown error = %v", err)
	}

	c := Many
	if err := SetCardinality(e, func(v Cardinality) { c = v }); err != nil || c != Many {
		t.Errorf("SetCardinality without Multiplicity = %v, %v", c, err)
	}
	end := element(t, `<End Multiplicity="0..1"/>`)
	if err := SetCardinality(end, func(v Cardinality) { c = v }); err != nil || c != ZeroToOne {
		t.Errorf("SetCardinality(0..1) = %v, %v", c, err)
	}

	var text string
	SetStringFromElement(e, "Child", "", func(v string) { text = v })
	if text != "hello world" {
		t.Errorf("SetStringFromElement = %q", text)
	}
}

func TestElement_Value(t *testing.T) {
	tests := []struct{ doc, want string }{
		{`<E/>`, ""},
		{`<E>plain</E>`, "plain"},
		{`<E>a<b>x</b>c</E>`, "axc"},
		{`<E><b>x</b>mid<i>y<u>z</u></i>end</E>`, "xmidyzend"},
	}
	for _, tt := range tests {
		if got := element(t, tt.doc).Value(); got != tt.want {
			t.Errorf("Value(%s) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestParseCardinality(t *testing.T) {
	for _, c := range []Cardinality{ZeroToOne, One, Many} {
		got, err := ParseCardinality(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCardinality(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCardinality("0..*"); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("ParseCardinality(0..*) error = %v", err)
	}
}
