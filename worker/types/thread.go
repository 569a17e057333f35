package types

import (
	"errors"
	"fmt"

	"git.sr.ht/~rjarry/sumview/models"
)

type Thread struct {
	Uid         models.UID
	Msg         *models.Message
	Parent      *Thread
	PrevSibling *Thread
	NextSibling *Thread
	FirstChild  *Thread

	Hidden bool // if this flag is set the children are folded in the list
}

func (t *Thread) AddChild(child *Thread) {
	t.InsertCmp(child, func(child, iter *Thread) bool { return true })
}

func (t *Thread) OrderedInsert(child *Thread) {
	t.InsertCmp(child, func(child, iter *Thread) bool { return child.Uid > iter.Uid })
}

// InsertCmp inserts child in the children list, after every sibling for which
// bigger(child, sibling) returns true.
func (t *Thread) InsertCmp(child *Thread, bigger func(*Thread, *Thread) bool) {
	var prev *Thread
	iter := t.FirstChild
	for iter != nil && bigger(child, iter) {
		prev = iter
		iter = iter.NextSibling
	}
	t.link(child, prev, iter)
}

// InsertAfter inserts child in t's children list right after sibling. A nil
// sibling inserts at the head of the list.
func (t *Thread) InsertAfter(child, sibling *Thread) {
	if sibling == nil {
		t.link(child, nil, t.FirstChild)
		return
	}
	t.link(child, sibling, sibling.NextSibling)
}

func (t *Thread) link(child, prev, next *Thread) {
	child.Parent = t
	child.PrevSibling = prev
	child.NextSibling = next
	if prev == nil {
		t.FirstChild = child
	} else {
		prev.NextSibling = child
	}
	if next != nil {
		next.PrevSibling = child
	}
}

// Unlink detaches the node (and its subtree) from its parent.
func (t *Thread) Unlink() {
	if t.Parent != nil && t.Parent.FirstChild == t {
		t.Parent.FirstChild = t.NextSibling
	}
	if t.PrevSibling != nil {
		t.PrevSibling.NextSibling = t.NextSibling
	}
	if t.NextSibling != nil {
		t.NextSibling.PrevSibling = t.PrevSibling
	}
	t.Parent = nil
	t.PrevSibling = nil
	t.NextSibling = nil
}

// PromoteChildren moves every child of t into t's parent list, in order,
// right after t. The pre-order of the forest is unchanged and t is left
// childless but still attached.
func (t *Thread) PromoteChildren() {
	if t.Parent == nil {
		return
	}
	prev := t
	for child := t.FirstChild; child != nil; {
		next := child.NextSibling
		child.Unlink()
		t.Parent.InsertAfter(child, prev)
		prev = child
		child = next
	}
}

func (t *Thread) LastChild() *Thread {
	var last *Thread
	for child := t.FirstChild; child != nil; child = child.NextSibling {
		last = child
	}
	return last
}

func (t *Thread) Children() []*Thread {
	var children []*Thread
	for child := t.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	return children
}

// Next returns the pre-order successor of t, nil at the end of the forest.
func (t *Thread) Next() *Thread {
	if t.FirstChild != nil {
		return t.FirstChild
	}
	for n := t; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// Prev returns the pre-order predecessor of t. For a top level node this is
// the node holding the forest.
func (t *Thread) Prev() *Thread {
	if t.PrevSibling == nil {
		return t.Parent
	}
	n := t.PrevSibling
	for n.FirstChild != nil {
		n = n.LastChild()
	}
	return n
}

// IsAncestorOf reports whether t is a strict ancestor of other.
func (t *Thread) IsAncestorOf(other *Thread) bool {
	for n := other.Parent; n != nil; n = n.Parent {
		if n == t {
			return true
		}
	}
	return false
}

func (t *Thread) Walk(walkFn NewThreadWalkFn) error {
	err := newWalk(t, walkFn, 0, nil)
	if err == ErrSkipThread {
		return nil
	}
	return err
}

func (t *Thread) String() string {
	if t == nil {
		return "<nil>"
	}
	parent := -1
	if t.Parent != nil {
		parent = int(t.Parent.Uid)
	}
	next := -1
	if t.NextSibling != nil {
		next = int(t.NextSibling.Uid)
	}
	child := -1
	if t.FirstChild != nil {
		child = int(t.FirstChild.Uid)
	}
	return fmt.Sprintf(
		"[%d] (parent:%v, next:%v, child:%v)",
		t.Uid, parent, next, child,
	)
}

func newWalk(node *Thread, walkFn NewThreadWalkFn, lvl int, ce error) error {
	if node == nil {
		return nil
	}
	err := walkFn(node, lvl, ce)
	if err != nil {
		return err
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		err = newWalk(child, walkFn, lvl+1, err)
		if err == ErrSkipThread {
			err = nil
			continue
		} else if err != nil {
			return err
		}
	}
	return nil
}

var ErrSkipThread = errors.New("skip this Thread")

type NewThreadWalkFn func(t *Thread, level int, currentErr error) error
