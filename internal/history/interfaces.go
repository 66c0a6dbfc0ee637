// Package history provides the bounded, deduplicated identification history.
package history

// HistoryManager defines the interface for the identification history.
// This interface enables dependency injection and easier testing.
type HistoryManager interface {
	// Record adds a successful identification unless the plant is already
	// present. It reports whether a new entry was written.
	Record(plantName, imageEncoded string) (bool, error)

	// List returns the stored entries, newest first
	List() []Entry

	// Load returns the stored entries at startup; same as List
	Load() []Entry
}

// Ensure concrete type implements the interface
var _ HistoryManager = (*Cache)(nil)
