package solution

import (
	"fmt"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/google/uuid"
)

// Well-known project type ids.
var (
	CSharpProjectType = uuid.MustParse("FAE04EC0-301F-11D3-BF4B-00C04F79EFBC")
	VBNetProjectType  = uuid.MustParse("F184B08F-C81C-45F6-A57F-5ABD9991F28F")
	FSharpProjectType = uuid.MustParse("F2A71F9B-5D33-465A-A702-920D77279786")
	GoProjectType     = uuid.MustParse("6C3B1C8E-2F7A-4E1D-9C0B-3D4B5E6F7A81")
)

// Project is a project entry of a solution.
type Project interface {
	Item

	// FileName returns the absolute path of the project file.
	FileName() fspath.Path

	// Directory returns the directory containing the project file.
	Directory() fspath.Path

	// TypeID returns the project type id recorded in the solution.
	TypeID() uuid.UUID

	// HasProjectType reports whether the project is of the given type.
	HasProjectType(typeID uuid.UUID) bool

	// IsFileInProject reports whether file belongs to the project.
	IsFileInProject(file fspath.Path) bool

	// Files returns the project's files in path order.
	Files() []fspath.Path
}

// BaseProject is the default Project implementation.
type BaseProject struct {
	itemBase
	fileName fspath.Path
	typeID   uuid.UUID
	files    *fspath.Set
	scanned  *fspath.Set
	scan     bool
}

var _ Project = (*BaseProject)(nil)

// projectBacked is implemented by *BaseProject and every type embedding it.
type projectBacked interface {
	baseProject() *BaseProject
}

func (p *BaseProject) baseProject() *BaseProject { return p }

// Kind returns KindProject.
func (p *BaseProject) Kind() Kind { return KindProject }

// FileName returns the project file path.
func (p *BaseProject) FileName() fspath.Path { return p.fileName }

// Directory returns the directory containing the project file.
func (p *BaseProject) Directory() fspath.Path {
	dir, _ := p.fileName.Parent()
	return dir
}

// TypeID returns the project type id.
func (p *BaseProject) TypeID() uuid.UUID { return p.typeID }

// HasProjectType reports whether the project is of the given type.
func (p *BaseProject) HasProjectType(typeID uuid.UUID) bool {
	return p.typeID == typeID
}

// SetName renames the project.
func (p *BaseProject) SetName(name string) error {
	return p.rename(p, name)
}

// IsFileInProject reports whether file belongs to the project.
// The project file itself always does.
func (p *BaseProject) IsFileInProject(file fspath.Path) bool {
	if file.Equal(p.fileName) {
		return true
	}
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()
	return p.files.Contains(file) || p.scanned.Contains(file)
}

// Files returns the listed and scanned files in path order.
func (p *BaseProject) Files() []fspath.Path {
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()

	all := fspath.NewSet(p.files.Paths()...)
	for _, f := range p.scanned.Paths() {
		all.Add(f)
	}
	return all.Paths()
}

// ListedFiles returns only the files recorded explicitly in the solution.
func (p *BaseProject) ListedFiles() []fspath.Path {
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()
	return p.files.Paths()
}

// ScansDirectory reports whether the project directory is scanned for
// files on load.
func (p *BaseProject) ScansDirectory() bool {
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()
	return p.scan
}

// SetScanDirectory enables or disables directory scanning on load.
func (p *BaseProject) SetScanDirectory(scan bool) {
	p.sln.mu.Lock()
	defer p.sln.mu.Unlock()
	if p.scan != scan {
		p.scan = scan
		p.sln.gen++
	}
}

// AddFile records file as part of the project. A relative path is resolved
// against the project directory.
func (p *BaseProject) AddFile(file fspath.Path) bool {
	file = file.Abs(p.Directory())
	p.sln.mu.Lock()
	defer p.sln.mu.Unlock()
	added := p.files.Add(file)
	if added {
		p.sln.gen++
	}
	return added
}

// RemoveFile drops file from the project.
func (p *BaseProject) RemoveFile(file fspath.Path) bool {
	file = file.Abs(p.Directory())
	p.sln.mu.Lock()
	defer p.sln.mu.Unlock()
	removed := p.files.Remove(file)
	if removed {
		p.sln.gen++
	}
	return removed
}

// setScanned replaces the scanned file set. Scanned files are derived from
// disk, so the solution does not become dirty.
func (p *BaseProject) setScanned(files []fspath.Path) {
	p.sln.mu.Lock()
	defer p.sln.mu.Unlock()
	p.scanned = fspath.NewSet(files...)
}

// DefaultUnknownProjectWarning is the warning attached to projects whose
// type has no registered binding.
const DefaultUnknownProjectWarning = "No backend is registered for this project type."

// WarningReporter shows a project load warning to the user.
type WarningReporter interface {
	ShowError(message string)
}

// UnknownProject is a project whose type no binding understands. It keeps
// its place in the solution so saving does not lose it, but it never claims
// a project type.
type UnknownProject struct {
	*BaseProject
	warningText      string
	warningDisplayed bool
}

var _ Project = (*UnknownProject)(nil)

// WarningText returns the warning shown for this project.
func (p *UnknownProject) WarningText() string {
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()
	return p.warningText
}

// SetWarningText replaces the warning shown for this project.
func (p *UnknownProject) SetWarningText(text string) {
	p.sln.mu.Lock()
	defer p.sln.mu.Unlock()
	p.warningText = text
}

// WarningDisplayedToUser reports whether ShowWarning has been called.
func (p *UnknownProject) WarningDisplayedToUser() bool {
	p.sln.mu.RLock()
	defer p.sln.mu.RUnlock()
	return p.warningDisplayed
}

// ShowWarning reports the load warning through r and remembers that the
// user has seen it.
func (p *UnknownProject) ShowWarning(r WarningReporter) {
	p.sln.mu.Lock()
	p.warningDisplayed = true
	text := p.warningText
	p.sln.mu.Unlock()

	r.ShowError(fmt.Sprintf("Error loading %s:\n%s", p.fileName, text))
}

// HasProjectType is always false for an unknown project.
func (p *UnknownProject) HasProjectType(uuid.UUID) bool {
	return false
}

// SetName renames the project.
func (p *UnknownProject) SetName(name string) error {
	return p.rename(p, name)
}
