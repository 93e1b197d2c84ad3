package solution

// ChangeType represents the kind of structural change to a solution.
type ChangeType int

const (
	// ChangeAdded indicates a detached item was added to a folder.
	ChangeAdded ChangeType = iota

	// ChangeRemoved indicates an item was removed from its folder.
	ChangeRemoved

	// ChangeMoved indicates an item moved from one folder to another.
	ChangeMoved

	// ChangeRenamed indicates an item's name changed.
	ChangeRenamed

	// ChangeSaved indicates the solution was written to its store.
	ChangeSaved
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeMoved:
		return "moved"
	case ChangeRenamed:
		return "renamed"
	case ChangeSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Change describes a structural change to a solution.
type Change struct {
	Type ChangeType

	// Item is the affected item; nil for ChangeSaved.
	Item Item

	// OldParent and NewParent are set for added, removed and moved items.
	OldParent *Folder
	NewParent *Folder

	// OldName is set for renamed items.
	OldName string
}
