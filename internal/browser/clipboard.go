package browser

import (
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// ItemFormat is the data format of a cut solution item. The data is the
// item's id.
const ItemFormat = "solution.Item"

// DataObject is clipboard content tagged with its format.
type DataObject struct {
	Format string
	Data   string
}

// Clipboard holds at most one data object.
type Clipboard interface {
	// SetDataObject replaces the clipboard content.
	SetDataObject(obj DataObject) error

	// DataObject returns the clipboard content. ok is false when the
	// clipboard is empty or holds something that is not a data object.
	DataObject() (obj DataObject, ok bool, err error)
}

// MemoryClipboard is a process-local clipboard.
type MemoryClipboard struct {
	mu  sync.Mutex
	obj *DataObject
}

// NewMemoryClipboard creates an empty clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// SetDataObject replaces the clipboard content.
func (c *MemoryClipboard) SetDataObject(obj DataObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = &obj
	return nil
}

// DataObject returns the clipboard content.
func (c *MemoryClipboard) DataObject() (DataObject, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.obj == nil {
		return DataObject{}, false, nil
	}
	return *c.obj, true, nil
}

// Clear empties the clipboard.
func (c *MemoryClipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obj = nil
}

// System clipboard access, replaceable in tests.
var (
	clipboardWriteAll = clipboard.WriteAll
	clipboardReadAll  = clipboard.ReadAll
)

// ErrClipboardUnavailable indicates the platform has no usable clipboard.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

// SystemClipboard stores data objects on the desktop clipboard as text of
// the form "workbench:<format>:<data>". Other text reads as empty.
type SystemClipboard struct{}

const systemPrefix = "workbench:"

// SetDataObject writes obj to the system clipboard.
func (SystemClipboard) SetDataObject(obj DataObject) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboardWriteAll(systemPrefix + obj.Format + ":" + obj.Data)
}

// DataObject reads the system clipboard.
func (SystemClipboard) DataObject() (DataObject, bool, error) {
	if clipboard.Unsupported {
		return DataObject{}, false, ErrClipboardUnavailable
	}
	text, err := clipboardReadAll()
	if err != nil {
		return DataObject{}, false, err
	}
	rest, ok := strings.CutPrefix(text, systemPrefix)
	if !ok {
		return DataObject{}, false, nil
	}
	format, data, ok := strings.Cut(rest, ":")
	if !ok {
		return DataObject{}, false, nil
	}
	return DataObject{Format: format, Data: data}, true, nil
}

// NewClipboard returns the clipboard for a backend name: "system" or
// anything else for an in-memory clipboard.
func NewClipboard(backend string) Clipboard {
	if backend == "system" {
		return SystemClipboard{}
	}
	return NewMemoryClipboard()
}
