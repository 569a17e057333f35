package iterator

import (
	"errors"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

func length(a interface{}) (int, error) {
	switch data := a.(type) {
	case []models.UID:
		return len(data), nil
	case []*types.Thread:
		return len(data), nil
	case []*models.Message:
		return len(data), nil
	}
	return 0, errors.New("an iterator for this type is not implemented yet")
}

func value(a interface{}, i int) interface{} {
	switch data := a.(type) {
	case []models.UID:
		return data[i]
	case []*types.Thread:
		return data[i]
	case []*models.Message:
		return data[i]
	}
	return nil
}

// defaultFactory iterates in slice order
type defaultFactory struct{}

func (df *defaultFactory) NewIterator(a interface{}) Iterator {
	n, err := length(a)
	if err != nil {
		panic(err)
	}
	return &forward{data: a, size: n, index: -1}
}

type forward struct {
	data  interface{}
	size  int
	index int
}

func (f *forward) Next() bool {
	f.index++
	return f.index < f.size
}

func (f *forward) Value() interface{} {
	return value(f.data, f.index)
}

func (f *forward) StartIndex() int {
	return 0
}

func (f *forward) EndIndex() int {
	return f.size - 1
}

// reverseFactory iterates from the end of the slice
type reverseFactory struct{}

func (rf *reverseFactory) NewIterator(a interface{}) Iterator {
	n, err := length(a)
	if err != nil {
		panic(err)
	}
	return &backward{data: a, size: n, index: n}
}

type backward struct {
	data  interface{}
	size  int
	index int
}

func (b *backward) Next() bool {
	b.index--
	return b.index >= 0
}

func (b *backward) Value() interface{} {
	return value(b.data, b.index)
}

func (b *backward) StartIndex() int {
	return b.size - 1
}

func (b *backward) EndIndex() int {
	return 0
}
