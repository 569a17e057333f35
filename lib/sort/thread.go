package sort

import (
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// SortThreads orders the children of parent, and recursively every sibling
// list below it, with the given criteria.
func SortThreads(parent *types.Thread, criteria []*types.SortCriterion) {
	children := parent.Children()
	if len(children) == 0 {
		return
	}
	if len(children) > 1 {
		byMsg := make(map[*models.Message]*types.Thread, len(children))
		msgs := make([]*models.Message, 0, len(children))
		for _, child := range children {
			byMsg[child.Msg] = child
			msgs = append(msgs, child.Msg)
		}
		Sort(msgs, criteria)
		for _, child := range children {
			child.Unlink()
		}
		var prev *types.Thread
		for _, msg := range msgs {
			child := byMsg[msg]
			parent.InsertAfter(child, prev)
			prev = child
		}
	}
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		SortThreads(child, criteria)
	}
}
