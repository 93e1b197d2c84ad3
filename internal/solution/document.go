package solution

import (
	"fmt"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/google/uuid"
)

// FormatVersion is the solution document version written by this package.
// Documents with a higher version are rejected.
const FormatVersion = 1

// Document is the serialized form of a solution.
type Document struct {
	FormatVersion int       `yaml:"format_version" toml:"format_version" json:"format_version"`
	ID            string    `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Name          string    `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Items         []ItemDoc `yaml:"items,omitempty" toml:"items,omitempty" json:"items,omitempty"`

	generation uint64
}

// ItemDoc is the serialized form of one item.
//
// Path holds the file location of a file item or the project file of a
// project, relative to the solution directory. Files are relative to the
// project directory.
type ItemDoc struct {
	Kind  string    `yaml:"kind" toml:"kind" json:"kind"`
	ID    string    `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Name  string    `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Path  string    `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	Type  string    `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Scan  bool      `yaml:"scan,omitempty" toml:"scan,omitempty" json:"scan,omitempty"`
	Files []string  `yaml:"files,omitempty" toml:"files,omitempty" json:"files,omitempty"`
	Items []ItemDoc `yaml:"items,omitempty" toml:"items,omitempty" json:"items,omitempty"`
}

// Document returns a snapshot of the solution in serializable form.
func (s *Solution) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.Directory()
	return &Document{
		FormatVersion: FormatVersion,
		ID:            s.root.id.String(),
		Name:          s.root.name,
		Items:         itemDocs(dir, s.root.items),
		generation:    s.gen,
	}
}

func itemDocs(dir fspath.Path, items []Item) []ItemDoc {
	if len(items) == 0 {
		return nil
	}
	out := make([]ItemDoc, 0, len(items))
	for _, item := range items {
		b := item.base()
		doc := ItemDoc{Kind: item.Kind().String(), ID: b.id.String(), Name: b.name}
		switch it := item.(type) {
		case *Folder:
			doc.Items = itemDocs(dir, it.items)
		case *FileItem:
			doc.Path = relativeTo(dir, it.location)
		case projectBacked:
			projectDoc(&doc, dir, it.baseProject())
		}
		out = append(out, doc)
	}
	return out
}

func projectDoc(doc *ItemDoc, dir fspath.Path, p *BaseProject) {
	doc.Path = relativeTo(dir, p.fileName)
	if p.typeID != uuid.Nil {
		doc.Type = p.typeID.String()
	}
	doc.Scan = p.scan
	projectDir, _ := p.fileName.Parent()
	for _, f := range p.files.Paths() {
		doc.Files = append(doc.Files, relativeTo(projectDir, f))
	}
	if doc.Name == p.fileName.FileNameWithoutExtension() {
		doc.Name = ""
	}
}

// relativeTo renders p relative to dir, falling back to the absolute form
// when the two do not share a root.
func relativeTo(dir, p fspath.Path) string {
	if dir.IsZero() {
		return p.String()
	}
	rel, err := dir.Rel(p)
	if err != nil {
		return p.String()
	}
	return rel
}

// decodeState carries the lookups needed while rebuilding a tree.
type decodeState struct {
	sln      *Solution
	bindings Bindings
	exists   func(fspath.Path) bool
	seen     map[uuid.UUID]bool
}

// build rebuilds a solution from doc. Structural problems are returned as
// plain errors for the caller to wrap in a LoadError; projects whose type
// or file cannot be resolved become UnknownProject instead.
func (d *decodeState) build(doc *Document) error {
	if doc.FormatVersion < 1 {
		return fmt.Errorf("missing format_version")
	}
	if doc.FormatVersion > FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.FormatVersion)
	}
	if doc.ID != "" {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return fmt.Errorf("solution id %q: %w", doc.ID, err)
		}
		d.sln.root.id = id
	}
	d.seen = map[uuid.UUID]bool{d.sln.root.id: true}
	if doc.Name != "" {
		d.sln.root.name = doc.Name
	}
	return d.addItems(d.sln.root, doc.Items, "items")
}

func (d *decodeState) addItems(parent *Folder, docs []ItemDoc, where string) error {
	for i := range docs {
		doc := &docs[i]
		at := fmt.Sprintf("%s[%d]", where, i)

		item, err := d.item(doc, at)
		if err != nil {
			return err
		}
		b := item.base()
		b.parent = parent
		parent.items = append(parent.items, item)

		if f, ok := item.(*Folder); ok {
			if err := d.addItems(f, doc.Items, at+".items"); err != nil {
				return err
			}
		} else if len(doc.Items) > 0 {
			return fmt.Errorf("%s: %s cannot contain items", at, doc.Kind)
		}
	}
	return nil
}

func (d *decodeState) item(doc *ItemDoc, at string) (Item, error) {
	id := uuid.New()
	if doc.ID != "" {
		parsed, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: id %q: %w", at, doc.ID, err)
		}
		id = parsed
	}
	if d.seen[id] {
		return nil, fmt.Errorf("%s: duplicate id %s", at, id)
	}
	d.seen[id] = true

	s := d.sln
	switch doc.Kind {
	case KindFolder.String():
		if err := fspath.CheckFileName(doc.Name); err != nil {
			return nil, fmt.Errorf("%s: folder name: %w", at, err)
		}
		f := s.NewFolder(doc.Name)
		f.id = id
		return f, nil

	case KindFile.String():
		if doc.Path == "" {
			return nil, fmt.Errorf("%s: file without path", at)
		}
		f := s.NewFileItem(fspath.Create(doc.Path))
		f.id = id
		if doc.Name != "" {
			f.name = doc.Name
		}
		return f, nil

	case KindProject.String():
		if doc.Path == "" {
			return nil, fmt.Errorf("%s: project without path", at)
		}
		return d.project(doc, id, at)

	default:
		return nil, fmt.Errorf("%s: unknown kind %q", at, doc.Kind)
	}
}

func (d *decodeState) project(doc *ItemDoc, id uuid.UUID, at string) (Project, error) {
	s := d.sln
	fileName := fspath.Create(doc.Path).Abs(s.Directory())

	typeID := uuid.Nil
	if doc.Type != "" {
		parsed, err := uuid.Parse(doc.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: type %q: %w", at, doc.Type, err)
		}
		typeID = parsed
	} else if binding, ok := d.bindings.ByFileName(fileName); ok {
		typeID = binding.TypeID
	}

	base := s.NewProject(fileName, doc.Name, typeID)
	if err := fspath.CheckFileName(base.name); err != nil {
		return nil, fmt.Errorf("%s: project name: %w", at, err)
	}
	base.id = id
	base.scan = doc.Scan
	projectDir := base.Directory()
	for _, f := range doc.Files {
		if f == "" {
			continue
		}
		base.files.Add(fspath.Create(f).Abs(projectDir))
	}

	var warning string
	if _, ok := d.bindings.ByType(typeID); !ok {
		warning = DefaultUnknownProjectWarning
	} else if d.exists != nil && !d.exists(fileName) {
		warning = "The project file could not be found."
	}
	if warning == "" {
		return base, nil
	}
	return &UnknownProject{BaseProject: base, warningText: warning}, nil
}
