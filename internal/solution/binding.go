package solution

import (
	"strings"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/google/uuid"
)

// Binding associates a project type with its project file extension.
type Binding struct {
	TypeID    uuid.UUID
	Extension string
	Language  string
}

// Bindings is the set of project types a Store can load. Projects of any
// other type load as UnknownProject.
type Bindings []Binding

// DefaultBindings lists the built-in project types.
var DefaultBindings = Bindings{
	{TypeID: CSharpProjectType, Extension: ".csproj", Language: "C#"},
	{TypeID: VBNetProjectType, Extension: ".vbproj", Language: "VBNet"},
	{TypeID: FSharpProjectType, Extension: ".fsproj", Language: "F#"},
	{TypeID: GoProjectType, Extension: ".goproj", Language: "Go"},
}

// ByType returns the binding for typeID.
func (b Bindings) ByType(typeID uuid.UUID) (Binding, bool) {
	for _, binding := range b {
		if binding.TypeID == typeID {
			return binding, true
		}
	}
	return Binding{}, false
}

// ByFileName returns the binding whose extension fileName carries.
func (b Bindings) ByFileName(fileName fspath.Path) (Binding, bool) {
	for _, binding := range b {
		if fileName.HasExtension(binding.Extension) {
			return binding, true
		}
	}
	return Binding{}, false
}

// ByLanguage returns the binding for a language name, ignoring case.
func (b Bindings) ByLanguage(language string) (Binding, bool) {
	for _, binding := range b {
		if strings.EqualFold(binding.Language, language) {
			return binding, true
		}
	}
	return Binding{}, false
}

// IsProjectFile reports whether fileName has a bound project extension.
func (b Bindings) IsProjectFile(fileName fspath.Path) bool {
	_, ok := b.ByFileName(fileName)
	return ok
}
