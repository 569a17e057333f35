package types

// FSWatcher reports changes made to a store by other programs.
type FSWatcher interface {
	Events() <-chan *FSEvent
	// Adds a directory or file to the watcher
	Add(string) error
	// Removes a directory or file from the watcher
	Remove(string) error
	Close() error
}

type FSOperation int

const (
	FSCreate FSOperation = iota
	FSRemove
	FSRename
)

type FSEvent struct {
	Operation FSOperation
	Path      string
}
