package lib

import (
	"context"

	"git.sr.ht/~rjarry/sumview/lib/ledger"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// apply runs a ledger transition on every live row of keys and returns how
// many rows it touched.
func (store *MessageStore) apply(
	keys []NodeKey, fn func(msg *models.Message) ledger.Counts,
) int {
	count := 0
	for _, key := range keys {
		n := store.lookup(key)
		if n == nil {
			continue
		}
		fn(n.Msg)
		count++
	}
	if count > 0 {
		store.listener.CountsChanged(store.ledger.Counts())
	}
	return count
}

func (store *MessageStore) Mark(keys ...NodeKey) int {
	return store.apply(keys, store.ledger.Mark)
}

func (store *MessageStore) Unmark(keys ...NodeKey) int {
	return store.apply(keys, store.ledger.Unmark)
}

func (store *MessageStore) MarkRead(keys ...NodeKey) int {
	return store.apply(keys, store.ledger.SetRead)
}

func (store *MessageStore) MarkUnread(keys ...NodeKey) int {
	return store.apply(keys, store.ledger.SetUnread)
}

func (store *MessageStore) MarkAllRead() int {
	var keys []NodeKey
	for _, msg := range store.Messages() {
		if msg.Flags.IsNew() || msg.Flags.IsUnread() {
			keys = append(keys, store.Key(msg.Uid))
		}
	}
	return store.MarkRead(keys...)
}

func (store *MessageStore) SetColorLabel(label int, keys ...NodeKey) int {
	return store.apply(keys, func(msg *models.Message) ledger.Counts {
		return store.ledger.SetColorLabel(msg, label)
	})
}

// Delete registers a pending delete on keys. When the selection is deleted
// it moves to the next row not pending deletion. In the trash folder, or with
// immediate-execute, the intents are committed right away.
func (store *MessageStore) Delete(ctx context.Context, keys ...NodeKey) error {
	if err := store.busy("delete"); err != nil {
		return err
	}
	if store.apply(keys, store.ledger.Delete) == 0 {
		return nil
	}
	store.skipSelection()
	if store.summary.ImmediateExecute || store.inTrash() {
		_, err := store.Execute(ctx)
		return err
	}
	return nil
}

// MoveTo registers a pending move of keys to dest.
func (store *MessageStore) MoveTo(ctx context.Context, dest *models.Folder, keys ...NodeKey) error {
	if err := store.busy("move"); err != nil {
		return err
	}
	if dest.Same(store.folder) {
		return types.ErrSameFolder
	}
	count := store.apply(keys, func(msg *models.Message) ledger.Counts {
		return store.ledger.MoveTo(msg, dest)
	})
	if count == 0 {
		return nil
	}
	store.skipSelection()
	if store.summary.ImmediateExecute {
		_, err := store.Execute(ctx)
		return err
	}
	return nil
}

// CopyTo registers a pending copy of keys to dest.
func (store *MessageStore) CopyTo(ctx context.Context, dest *models.Folder, keys ...NodeKey) error {
	if err := store.busy("copy"); err != nil {
		return err
	}
	if dest.Same(store.folder) {
		return types.ErrSameFolder
	}
	count := store.apply(keys, func(msg *models.Message) ledger.Counts {
		return store.ledger.CopyTo(msg, dest)
	})
	if count > 0 && store.summary.ImmediateExecute {
		_, err := store.Execute(ctx)
		return err
	}
	return nil
}

// skipSelection moves the selection off a row that is about to leave the
// folder.
func (store *MessageStore) skipSelection() {
	n := store.resolve(store.selected)
	if n == nil || !(n.Msg.Flags.IsDeleted() || n.Msg.Flags.IsMove()) {
		return
	}
	leaving := func(msg *models.Message) bool {
		return !msg.Flags.IsDeleted() && !msg.Flags.IsMove()
	}
	key, ok := store.FindNext(store.selected, leaving, true)
	if !ok {
		key, ok = store.FindPrev(store.selected, leaving, true)
	}
	if ok {
		store.Select(key)
	}
}

func (store *MessageStore) inTrash() bool {
	if store.folder.IsTrash() {
		return true
	}
	return store.folder.Same(store.backend.Trash())
}

// DeleteDuplicated registers a delete on every message whose message-id was
// already seen earlier in the list. Pending moves and copies of duplicates
// are overridden. Nothing is done in the trash folder.
func (store *MessageStore) DeleteDuplicated(ctx context.Context) (int, error) {
	if err := store.busy("delete duplicates"); err != nil {
		return 0, err
	}
	if store.inTrash() {
		return 0, nil
	}
	seen := make(map[string]struct{})
	var dups []NodeKey
	for _, msg := range store.Messages() {
		if msg.MessageId == "" {
			continue
		}
		if _, ok := seen[msg.MessageId]; ok {
			dups = append(dups, store.Key(msg.Uid))
			continue
		}
		seen[msg.MessageId] = struct{}{}
	}
	if len(dups) == 0 {
		return 0, nil
	}
	log.Debugf("%s: %d duplicates", store.folder, len(dups))
	return len(dups), store.Delete(ctx, dups...)
}

// Filter applies the verdicts of ev to the selected rows, or to every row.
// A move takes precedence over a copy, a copy over a delete. It returns the
// number of messages a verdict applied to.
func (store *MessageStore) Filter(
	ctx context.Context, ev types.FilterEvaluator, selectedOnly bool,
) (int, error) {
	if err := store.busy("filter"); err != nil {
		return 0, err
	}
	var msgs []*models.Message
	if selectedOnly {
		for _, key := range store.Targets() {
			if msg := store.Message(key); msg != nil {
				msgs = append(msgs, msg)
			}
		}
	} else {
		msgs = store.Messages()
	}

	matched := 0
	for _, msg := range msgs {
		v := ev.Evaluate(msg)
		if v.Actions == 0 {
			continue
		}
		matched++
		if v.Has(types.ActionMark) {
			store.ledger.Mark(msg)
		}
		if v.Has(types.ActionLabel) {
			store.ledger.SetColorLabel(msg, v.Label)
		}
		if v.Has(types.ActionMarkRead) {
			store.ledger.SetRead(msg)
		}
		switch {
		case v.Has(types.ActionMove) && v.Dest != nil && !v.Dest.Same(store.folder):
			store.ledger.MoveTo(msg, v.Dest)
		case v.Has(types.ActionCopy) && v.Dest != nil && !v.Dest.Same(store.folder):
			store.ledger.CopyTo(msg, v.Dest)
		case v.Has(types.ActionDelete):
			store.ledger.Delete(msg)
		}
	}
	if matched == 0 {
		return 0, nil
	}
	log.Debugf("%s: filter matched %d messages", store.folder, matched)
	store.listener.CountsChanged(store.ledger.Counts())
	store.skipSelection()
	if store.summary.ImmediateExecute {
		_, err := store.Execute(ctx)
		return matched, err
	}
	return matched, nil
}

// Invalidate drops the rows of messages removed behind the engine's back.
func (store *MessageStore) Invalidate(uids []models.UID) error {
	if err := store.busy("invalidate"); err != nil {
		return err
	}
	count := 0
	for _, uid := range uids {
		if n := store.nodes[uid]; n != nil && !n.Msg.Flags.IsInvalid() {
			n.Msg.Flags.SetTmp(models.TmpInvalid)
			count++
		}
	}
	if count == 0 {
		return nil
	}
	store.Lock()
	defer store.Unlock()
	store.reconcile(&CommitResult{})
	store.recount()
	return nil
}
