package iterator

// Factory is the interface that wraps the NewIterator method. The
// NewIterator() creates UID, thread or message iterators and ensures that all
// of them implement the same iteration direction.
type Factory interface {
	NewIterator(a interface{}) Iterator
}

// Iterator implements an interface for iterating over UID, thread or message
// data. If Next() returns true, the current value of the iterator can be read
// with Value(). The return value of Value() is an interface{} type which needs to
// be cast to the correct type.
//
// StartIndex() returns the index of the first value returned by the iterator
// whereas EndIndex() returns the index of the last one.
type Iterator interface {
	Next() bool
	Value() interface{}
	StartIndex() int
	EndIndex() int
}

// NewFactory creates an iterator factory. By default the iterators follow
// the display order of the message list, top to bottom. When reverse is true
// the bottom row comes first.
func NewFactory(reverse bool) Factory {
	if reverse {
		return &reverseFactory{}
	}
	return &defaultFactory{}
}
