package types

import "git.sr.ht/~rjarry/sumview/models"

type FilterAction int

const (
	ActionMove FilterAction = 1 << iota
	ActionCopy
	ActionDelete
	ActionMark
	ActionLabel
	ActionMarkRead
)

// Verdict is the outcome of a filter rule for one message.
type Verdict struct {
	Actions FilterAction
	Dest    *models.Folder
	Label   int
}

func (v Verdict) Has(action FilterAction) bool {
	return v.Actions&action != 0
}

type FilterEvaluator interface {
	Evaluate(msg *models.Message) Verdict
}

type FilterFunc func(msg *models.Message) Verdict

func (f FilterFunc) Evaluate(msg *models.Message) Verdict {
	return f(msg)
}
