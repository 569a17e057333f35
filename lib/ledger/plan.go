package ledger

import "git.sr.ht/~rjarry/sumview/models"

// A Batch is a set of messages sharing one destination.
type Batch struct {
	Dest     *models.Folder
	Messages []*models.Message
}

func (b *Batch) Uids() []models.UID {
	uids := make([]models.UID, 0, len(b.Messages))
	for _, msg := range b.Messages {
		uids = append(uids, msg.Uid)
	}
	return uids
}

// Plan groups the pending intents of one commit cycle.
type Plan struct {
	Moves   []*Batch
	Copies  []*Batch
	Deletes []*models.Message
}

func (p *Plan) Empty() bool {
	return len(p.Moves) == 0 && len(p.Copies) == 0 && len(p.Deletes) == 0
}

// NewPlan groups msgs by pending action. Moves and copies are batched per
// destination in first seen order. A deleted message never goes in a move or
// copy batch.
func NewPlan(msgs []*models.Message) *Plan {
	plan := &Plan{}
	moves := make(map[string]*Batch)
	copies := make(map[string]*Batch)
	for _, msg := range msgs {
		switch {
		case msg.Flags.IsInvalid():
			continue
		case msg.Flags.IsDeleted():
			plan.Deletes = append(plan.Deletes, msg)
		case msg.Flags.IsMove() && msg.ToFolder != nil:
			plan.Moves = group(plan.Moves, moves, msg)
		case msg.Flags.IsCopy() && msg.ToFolder != nil:
			plan.Copies = group(plan.Copies, copies, msg)
		}
	}
	return plan
}

func group(batches []*Batch, index map[string]*Batch, msg *models.Message) []*Batch {
	b, ok := index[msg.ToFolder.Path]
	if !ok {
		b = &Batch{Dest: msg.ToFolder}
		index[msg.ToFolder.Path] = b
		batches = append(batches, b)
	}
	b.Messages = append(b.Messages, msg)
	return batches
}
