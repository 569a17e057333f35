package sort

import (
	"strings"
	"time"

	"git.sr.ht/~rjarry/sumview/models"
	sortthread "github.com/emersion/go-imap-sortthread"
)

// DefaultAttractWindow is the largest date distance between two messages of
// the same subject for the later one to be attracted.
const DefaultAttractWindow = 30 * 24 * time.Hour

// BaseSubject strips reply and forward prefixes from a subject.
func BaseSubject(subject string) string {
	base, _ := sortthread.GetBaseSubject(subject)
	return base
}

// SubjectKey returns the normalized subject used to cluster messages: base
// subject, lower case, collapsed white space.
func SubjectKey(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(BaseSubject(subject))), " ")
}

// AttractBySubject reorders msgs so that a message follows the latest
// previous message of the same subject, when both dates are within window.
// Messages without subject never move. The relative order is otherwise
// preserved.
func AttractBySubject(msgs []*models.Message, window time.Duration) []*models.Message {
	n := len(msgs)
	if n < 2 {
		return msgs
	}
	// singly linked list over msgs indexes, n terminates it
	next := make([]int, n)
	for i := range next {
		next[i] = i + 1
	}
	holders := make(map[string]int)
	last := -1
	for cur := 0; cur != n; {
		following := next[cur]
		msg := msgs[cur]
		key := SubjectKey(msg.Subject)
		if key == "" {
			last = cur
			cur = following
			continue
		}
		dest, seen := holders[key]
		switch {
		case seen && within(msg.Date, msgs[dest].Date, window):
			if next[dest] != cur {
				next[last] = next[cur]
				next[cur] = next[dest]
				next[dest] = cur
			} else {
				last = cur
			}
		default:
			last = cur
		}
		holders[key] = cur
		cur = following
	}

	result := make([]*models.Message, 0, n)
	for i := 0; i != n; i = next[i] {
		result = append(result, msgs[i])
	}
	return result
}

func within(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
