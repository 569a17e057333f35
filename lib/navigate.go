package lib

import (
	"git.sr.ht/~rjarry/sumview/lib/iterator"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// Predicate selects messages in list searches.
type Predicate func(msg *models.Message) bool

func IsUnread(msg *models.Message) bool  { return msg.Flags.IsUnread() }
func IsNew(msg *models.Message) bool     { return msg.Flags.IsNew() }
func IsMarked(msg *models.Message) bool  { return msg.Flags.IsMarked() }
func IsDeleted(msg *models.Message) bool { return msg.Flags.IsDeleted() }
func IsLabeled(msg *models.Message) bool { return msg.Flags.ColorLabel() != 0 }
func Any(msg *models.Message) bool       { return true }

func notDeleted(msg *models.Message) bool { return !msg.Flags.IsDeleted() }

// start returns the node a search from key begins with. A key that does not
// resolve is treated as no key. Invalid nodes are still valid starting
// points: reconciliation searches from rows about to be purged.
func (store *MessageStore) start(from *NodeKey) *types.Thread {
	if from == nil {
		return nil
	}
	return store.node(*from)
}

// last returns the last node of the forest in pre-order.
func (store *MessageStore) last() *types.Thread {
	n := store.root.LastChild()
	for n != nil && n.FirstChild != nil {
		n = n.LastChild()
	}
	return n
}

// FindNext scans the forest in pre-order for a message matching pred. The
// scan begins at from, or right after it when startFromNext is set. A nil
// from begins at the first row.
func (store *MessageStore) FindNext(
	from *NodeKey, pred Predicate, startFromNext bool,
) (NodeKey, bool) {
	n := store.start(from)
	switch {
	case n == nil:
		n = store.root.FirstChild
	case startFromNext:
		n = n.Next()
	}
	for ; n != nil; n = n.Next() {
		if !n.Msg.Flags.IsInvalid() && pred(n.Msg) {
			return store.keyOf(n), true
		}
	}
	return NodeKey{}, false
}

// FindPrev is the backward counterpart of FindNext. A nil from begins at the
// last row.
func (store *MessageStore) FindPrev(
	from *NodeKey, pred Predicate, startFromPrev bool,
) (NodeKey, bool) {
	n := store.start(from)
	switch {
	case n == nil:
		n = store.last()
	case startFromPrev:
		n = n.Prev()
	}
	for ; n != nil && n != store.root; n = n.Prev() {
		if !n.Msg.Flags.IsInvalid() && pred(n.Msg) {
			return store.keyOf(n), true
		}
	}
	return NodeKey{}, false
}

// FindNearest returns the closest row to from, looking forward first. Rows
// pending deletion are only picked when nothing else is left. An empty view
// has no nearest row.
func (store *MessageStore) FindNearest(from *NodeKey) (NodeKey, bool) {
	for _, pred := range []Predicate{notDeleted, Any} {
		if key, ok := store.FindNext(from, pred, false); ok {
			return key, true
		}
		if key, ok := store.FindPrev(from, pred, false); ok {
			return key, true
		}
	}
	return NodeKey{}, false
}

// SelectNext selects the next row matching pred after the selection.
func (store *MessageStore) SelectNext(pred Predicate) bool {
	key, ok := store.FindNext(store.selected, pred, store.selected != nil)
	if !ok {
		return false
	}
	return store.Select(key)
}

// SelectPrev selects the previous row matching pred before the selection.
func (store *MessageStore) SelectPrev(pred Predicate) bool {
	key, ok := store.FindPrev(store.selected, pred, store.selected != nil)
	if !ok {
		return false
	}
	return store.Select(key)
}

// Step moves the selection by delta visible rows, stopping at the first and
// last rows. Without a selection the first row is selected.
func (store *MessageStore) Step(delta int) bool {
	uids := store.Uids()
	if len(uids) == 0 {
		return false
	}
	idx := store.SelectedIndex()
	if idx < 0 {
		return store.SelectByUid(uids[0])
	}
	it := iterator.NewFactory(false).NewIterator(uids)
	idx = iterator.MoveIndex(idx, delta, it, iterator.FixBounds)
	return store.SelectByUid(uids[idx])
}

// Targets returns the rows an action applies to: the marked rows when any,
// else the selection.
func (store *MessageStore) Targets() []NodeKey {
	var keys []NodeKey
	for _, uid := range store.marker.Marked() {
		keys = append(keys, store.Key(uid))
	}
	if len(keys) == 0 {
		if key, ok := store.Selected(); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
