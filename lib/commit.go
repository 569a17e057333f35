package lib

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~rjarry/sumview/lib/ledger"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// CommitResult sums up one commit cycle.
type CommitResult struct {
	Moved   int
	Copied  int
	Deleted int
	Purged  int
	// messages of batches not attempted because the store went away
	Skipped int
	Failed  []*types.BatchError
}

// Execute commits the pending moves, copies and deletes, in that order, then
// purges the rows of the messages that left the folder. A failed batch keeps
// its intents pending and does not stop the other batches: it is reported
// in a *types.PartialCommitError once everything ran.
func (store *MessageStore) Execute(ctx context.Context) (*CommitResult, error) {
	if err := store.busy("execute"); err != nil {
		return nil, err
	}
	store.Lock()
	defer store.Unlock()

	start := time.Now()
	result := &CommitResult{}
	plan := ledger.NewPlan(store.Messages())

	store.transfer(ctx, types.OpMove, plan.Moves, result)
	store.transfer(ctx, types.OpCopy, plan.Copies, result)
	store.remove(ctx, plan.Deletes, result)

	store.reconcile(result)
	store.recount()
	store.writeCache(ctx)

	log.Infof("%s: %d moved, %d copied, %d deleted, %d purged in %s",
		store.folder, result.Moved, result.Copied, result.Deleted,
		result.Purged, time.Since(start))
	if len(result.Failed) > 0 {
		return result, &types.PartialCommitError{Errors: result.Failed}
	}
	return result, nil
}

func (store *MessageStore) transfer(
	ctx context.Context, op types.BatchOp, batches []*ledger.Batch,
	result *CommitResult,
) {
	for i, batch := range batches {
		var err error
		if op == types.OpMove {
			err = store.backend.MoveMessages(ctx, batch.Messages, batch.Dest)
		} else {
			err = store.backend.CopyMessages(ctx, batch.Messages, batch.Dest)
		}
		if err != nil {
			store.fail(result, op, batch.Dest, batch.Messages, err)
			if errors.Is(err, types.ErrStoreUnavailable) {
				for _, rest := range batches[i+1:] {
					result.Skipped += len(rest.Messages)
				}
				log.Warnf("%s: store unavailable, %d %s batches skipped",
					store.folder, len(batches)-i-1, op)
				return
			}
			continue
		}
		for _, msg := range batch.Messages {
			msg.ToFolder = nil
			msg.Flags.UnsetTmp(models.TmpMove | models.TmpCopy)
			if op == types.OpMove {
				msg.Flags.SetTmp(models.TmpInvalid)
				result.Moved++
			} else {
				result.Copied++
			}
		}
		log.Debugf("%s: %s of %d messages to %s", store.folder, op,
			len(batch.Messages), batch.Dest)
	}
}

// remove sends msgs to the trash, or removes them for good when the folder
// is the trash.
func (store *MessageStore) remove(
	ctx context.Context, msgs []*models.Message, result *CommitResult,
) {
	if len(msgs) == 0 {
		return
	}
	var dest *models.Folder
	var err error
	if store.inTrash() {
		err = store.backend.RemoveMessages(ctx, msgs)
	} else if dest = store.backend.Trash(); dest == nil {
		err = types.ErrNoTrash
	} else {
		err = store.backend.MoveMessages(ctx, msgs, dest)
	}
	if err != nil {
		store.fail(result, types.OpDelete, dest, msgs, err)
		return
	}
	for _, msg := range msgs {
		msg.Flags.SetTmp(models.TmpInvalid)
	}
	result.Deleted += len(msgs)
}

func (store *MessageStore) fail(
	result *CommitResult, op types.BatchOp, dest *models.Folder,
	msgs []*models.Message, err error,
) {
	uids := make([]models.UID, 0, len(msgs))
	for _, msg := range msgs {
		uids = append(uids, msg.Uid)
	}
	batchErr := &types.BatchError{Op: op, Dest: dest, Uids: uids, Err: err}
	log.Errorf("%s: %v", store.folder, batchErr)
	result.Failed = append(result.Failed, batchErr)
}

// reconcile purges the invalid rows. Live children of a purged row take its
// place, the selection moves to the nearest row and the displayed slot is
// kept only if its message is still in the view.
func (store *MessageStore) reconcile(result *CommitResult) {
	var invalid []*types.Thread
	for n := store.root.FirstChild; n != nil; n = n.Next() {
		if n.Msg.Flags.IsInvalid() {
			invalid = append(invalid, n)
		}
	}
	for _, n := range invalid {
		n.PromoteChildren()
	}

	var displayed *models.Message
	if store.displayed != nil {
		if n := store.node(*store.displayed); n != nil {
			displayed = n.Msg
		}
	}
	var selectionBefore *models.Message
	if store.selected != nil {
		if n := store.node(*store.selected); n != nil {
			selectionBefore = n.Msg
			// rows left pending deletion by a failed batch are not a
			// resting place for the selection either
			if n.Msg.Flags.IsInvalid() || n.Msg.Flags.IsDeleted() {
				if key, ok := store.FindNearest(store.selected); ok {
					store.selected = &key
				} else {
					store.selected = nil
				}
			}
		}
	}

	for _, n := range invalid {
		if n.FirstChild != nil {
			err := fmt.Errorf("%w: %s still has children",
				types.ErrInconsistentTree, n.Msg)
			if store.conf.General.Debug {
				panic(err)
			}
			log.Errorf("%v, not purged", err)
			continue
		}
		n.Unlink()
		delete(store.nodes, n.Uid)
		result.Purged++
	}
	kept := store.messages[:0]
	for _, msg := range store.messages {
		if _, ok := store.nodes[msg.Uid]; ok {
			kept = append(kept, msg)
		}
	}
	store.messages = kept
	if result.Purged > 0 {
		log.Debugf("%s: %d rows purged", store.folder, result.Purged)
	}

	if after := store.SelectedMessage(); after != selectionBefore {
		store.listener.SelectionChanged(after)
	}
	store.marker.UpdateVisualMark()

	if displayed == nil {
		return
	}
	if n := store.same(displayed); n != nil {
		key := store.keyOf(n)
		store.displayed = &key
	} else {
		store.displayed = nil
		store.listener.DisplayedChanged(nil)
	}
}
