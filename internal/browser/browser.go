// Package browser implements the project browser: a sorted node tree over
// a solution and the edits users make through it.
//
// Cut and paste go through a Clipboard carrying the cut item's id. Drag and
// drop is expressed as DropEffect, which says whether a drop is allowed,
// and Drop, which performs it. Every successful edit saves the solution
// unless the browser was created with SaveOnChange(false).
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/dshills/workbench/internal/solution"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Standard errors returned by browser operations.
var (
	// ErrNotSupported indicates an operation the node does not allow.
	ErrNotSupported = errors.New("operation not supported")

	// ErrPasteDisabled indicates a paste that CanPaste rejects.
	ErrPasteDisabled = errors.New("pasting is not enabled")

	// ErrDropDisabled indicates a drop whose effect is EffectNone.
	ErrDropDisabled = errors.New("drop is not allowed")

	// ErrNotFolder indicates a target node that is not a solution folder.
	ErrNotFolder = errors.New("target is not a solution folder")
)

// Effect is the result of a drag and drop.
type Effect int

const (
	// EffectNone means the drop is refused.
	EffectNone Effect = iota
	// EffectMove means the dragged item moves into the target.
	EffectMove
)

// String returns the effect name.
func (e Effect) String() string {
	if e == EffectMove {
		return "move"
	}
	return "none"
}

// Browser edits a solution through its node tree.
type Browser struct {
	tree *Tree
	clip Clipboard
	save bool
	log  *zap.Logger
}

// Option configures a Browser.
type Option func(*Browser)

// WithClipboard sets the clipboard used by Cut and Paste.
func WithClipboard(c Clipboard) Option {
	return func(b *Browser) {
		b.clip = c
	}
}

// SaveOnChange sets whether edits save the solution.
func SaveOnChange(save bool) Option {
	return func(b *Browser) {
		b.save = save
	}
}

// WithLogger sets the browser logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Browser) {
		b.log = log
	}
}

// New creates a browser over sln.
func New(sln *solution.Solution, opts ...Option) *Browser {
	b := &Browser{
		clip: NewMemoryClipboard(),
		save: true,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.tree = NewTree(sln)
	return b
}

// Tree returns the node tree.
func (b *Browser) Tree() *Tree { return b.tree }

// Close stops following the solution.
func (b *Browser) Close() { b.tree.Close() }

func (b *Browser) commit(ctx context.Context) error {
	if !b.save {
		return nil
	}
	return b.tree.sln.Save(ctx)
}

func (b *Browser) isRoot(n *Node) bool {
	return n == b.tree.root
}

// Copy is not supported for solution items.
func (b *Browser) Copy(n *Node) error {
	return fmt.Errorf("copy %s: %w", n.item.Name(), ErrNotSupported)
}

// Cut places n's item on the clipboard and marks the node as cut.
func (b *Browser) Cut(n *Node) error {
	if b.isRoot(n) {
		return fmt.Errorf("cut %s: %w", n.item.Name(), ErrNotSupported)
	}
	if err := b.clip.SetDataObject(DataObject{Format: ItemFormat, Data: n.item.ID().String()}); err != nil {
		return fmt.Errorf("cut %s: %w", n.item.Name(), err)
	}

	b.tree.mu.Lock()
	for _, other := range b.tree.nodes {
		other.cut = false
	}
	n.cut = true
	b.tree.mu.Unlock()
	return nil
}

// clipboardItem resolves the item named by the clipboard, or nil.
func (b *Browser) clipboardItem() solution.Item {
	obj, ok, err := b.clip.DataObject()
	if err != nil {
		b.log.Debug("clipboard unreadable", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return b.itemFromData(obj)
}

func (b *Browser) itemFromData(obj DataObject) solution.Item {
	if obj.Format != ItemFormat {
		return nil
	}
	id, err := uuid.Parse(obj.Data)
	if err != nil {
		return nil
	}
	return b.tree.sln.ItemByID(id)
}

// CanPaste reports whether the clipboard content can be pasted into the
// folder shown by target.
func (b *Browser) CanPaste(target *Node) bool {
	return b.canPasteItem(target, b.clipboardItem())
}

// CanPasteData reports whether obj can be pasted into target.
func (b *Browser) CanPasteData(target *Node, obj DataObject) bool {
	return b.canPasteItem(target, b.itemFromData(obj))
}

func (b *Browser) canPasteItem(target *Node, item solution.Item) bool {
	folder := target.Folder()
	if folder == nil || item == nil || item.ID() == folder.ID() {
		return false
	}
	if f, ok := item.(*solution.Folder); ok {
		return f.ParentFolder() != folder && !f.IsAncestorOf(folder)
	}
	return item.ParentFolder() != folder
}

// Paste moves the cut item into target and saves the solution.
func (b *Browser) Paste(ctx context.Context, target *Node) error {
	item := b.clipboardItem()
	if !b.canPasteItem(target, item) {
		b.log.Warn("paste was not enabled", zap.String("target", target.item.Name()))
		return ErrPasteDisabled
	}
	if err := target.Folder().Add(item); err != nil {
		return err
	}

	b.tree.mu.Lock()
	for _, n := range b.tree.nodes {
		n.cut = false
	}
	b.tree.mu.Unlock()
	return b.commit(ctx)
}

// DropEffect reports what dropping dragged onto target would do. A folder
// may move anywhere outside its own subtree; projects and files may move
// into any folder other than their current one.
func (b *Browser) DropEffect(target, dragged *Node) Effect {
	folder := target.Folder()
	if folder == nil || dragged == nil || b.isRoot(dragged) {
		return EffectNone
	}
	switch it := dragged.item.(type) {
	case *solution.Folder:
		if !it.IsAncestorOf(folder) {
			return EffectMove
		}
	default:
		if it.ParentFolder() != folder {
			return EffectMove
		}
	}
	return EffectNone
}

// Drop moves dragged into target and saves the solution.
func (b *Browser) Drop(ctx context.Context, target, dragged *Node) error {
	if b.DropEffect(target, dragged) == EffectNone {
		return ErrDropDisabled
	}
	if err := target.Folder().Add(dragged.item); err != nil {
		return err
	}
	return b.commit(ctx)
}

// Delete removes n's item from its folder and saves the solution.
func (b *Browser) Delete(ctx context.Context, n *Node) error {
	if b.isRoot(n) {
		return fmt.Errorf("delete %s: %w", n.item.Name(), ErrNotSupported)
	}
	parent := n.item.ParentFolder()
	if parent == nil || !parent.Remove(n.item) {
		return fmt.Errorf("delete %s: %w", n.item.Name(), solution.ErrNotFound)
	}
	return b.commit(ctx)
}

// Rename renames the folder shown by n and saves the solution. The name
// must be a valid file name.
func (b *Browser) Rename(ctx context.Context, n *Node, name string) error {
	f := n.Folder()
	if f == nil || b.isRoot(n) {
		return fmt.Errorf("rename %s: %w", n.item.Name(), ErrNotSupported)
	}
	if err := f.SetName(name); err != nil {
		return err
	}
	return b.commit(ctx)
}

// AddFolder creates a solution folder inside target and saves.
func (b *Browser) AddFolder(ctx context.Context, target *Node, name string) (*Node, error) {
	folder := target.Folder()
	if folder == nil {
		return nil, ErrNotFolder
	}
	child, err := folder.AddFolder(name)
	if err != nil {
		return nil, err
	}
	if err := b.commit(ctx); err != nil {
		return nil, err
	}
	return b.tree.Node(child), nil
}

// AddItem adds the file at fileName to target as a solution item and saves.
func (b *Browser) AddItem(ctx context.Context, target *Node, fileName fspath.Path) (*Node, error) {
	folder := target.Folder()
	if folder == nil {
		return nil, ErrNotFolder
	}
	item, err := folder.AddFile(fileName)
	if err != nil {
		return nil, err
	}
	if err := b.commit(ctx); err != nil {
		return nil, err
	}
	return b.tree.Node(item), nil
}
