// Package ledger implements the flag transitions of pending message
// intents (mark, delete, move, copy) and the counters they maintain.
//
// Transitions never perform I/O, they only update flags and counters. The
// commit engine drains the pending intents later.
package ledger

import (
	"fmt"

	"git.sr.ht/~rjarry/sumview/models"
)

// Counts are the aggregate counters of a message list.
type Counts struct {
	Deleted   int
	Moved     int
	Copied    int
	TotalSize int64
}

// Pending reports whether any intent waits for a commit.
func (c Counts) Pending() bool {
	return c.Deleted > 0 || c.Moved > 0 || c.Copied > 0
}

func (c Counts) String() string {
	return fmt.Sprintf("%d deleted, %d moved, %d copied",
		c.Deleted, c.Moved, c.Copied)
}

type Ledger struct {
	counts Counts
}

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Counts() Counts {
	return l.counts
}

// cancel resets any pending delete, move or copy.
func (l *Ledger) cancel(msg *models.Message) {
	msg.ToFolder = nil
	if msg.Flags.IsDeleted() {
		l.counts.Deleted--
	}
	if msg.Flags.IsMove() {
		l.counts.Moved--
	}
	if msg.Flags.IsCopy() {
		l.counts.Copied--
	}
	msg.Flags.Unset(models.FlagDeleted)
	msg.Flags.UnsetTmp(models.TmpMove | models.TmpCopy)
}

// Mark sets the mark and cancels a pending delete, move or copy.
func (l *Ledger) Mark(msg *models.Message) Counts {
	l.cancel(msg)
	msg.Flags.Set(models.FlagMarked)
	return l.counts
}

// Unmark clears the mark and cancels a pending delete, move or copy.
func (l *Ledger) Unmark(msg *models.Message) Counts {
	l.cancel(msg)
	msg.Flags.Unset(models.FlagMarked)
	return l.counts
}

// SetRead clears NEW and UNREAD and updates the folder counters.
func (l *Ledger) SetRead(msg *models.Message) Counts {
	if f := msg.Folder; f != nil {
		if msg.Flags.IsNew() && f.New > 0 {
			f.New--
		}
		if msg.Flags.IsUnread() && f.Unread > 0 {
			f.Unread--
		}
	}
	msg.Flags.Unset(models.FlagNew | models.FlagUnread)
	return l.counts
}

// SetUnread sets UNREAD and clears REPLIED and FORWARDED. A pending delete
// is cancelled.
func (l *Ledger) SetUnread(msg *models.Message) Counts {
	if msg.Flags.IsDeleted() {
		msg.ToFolder = nil
		msg.Flags.Unset(models.FlagDeleted)
		l.counts.Deleted--
	}
	msg.Flags.Unset(models.FlagReplied | models.FlagForwarded)
	if !msg.Flags.IsUnread() {
		msg.Flags.Set(models.FlagUnread)
		if msg.Folder != nil {
			msg.Folder.Unread++
		}
	}
	return l.counts
}

// Delete registers a pending delete. A pending move or copy is cancelled.
func (l *Ledger) Delete(msg *models.Message) Counts {
	if msg.Flags.IsDeleted() {
		return l.counts
	}
	msg.ToFolder = nil
	if msg.Flags.IsMove() {
		l.counts.Moved--
	}
	if msg.Flags.IsCopy() {
		l.counts.Copied--
	}
	msg.Flags.UnsetTmp(models.TmpMove | models.TmpCopy)
	msg.Flags.Set(models.FlagDeleted)
	l.counts.Deleted++
	return l.counts
}

// MoveTo registers a pending move to dest. Calling it again only redirects
// the move.
func (l *Ledger) MoveTo(msg *models.Message, dest *models.Folder) Counts {
	l.transfer(msg, dest, models.TmpMove, models.TmpCopy)
	return l.counts
}

// CopyTo registers a pending copy to dest. Calling it again only redirects
// the copy.
func (l *Ledger) CopyTo(msg *models.Message, dest *models.Folder) Counts {
	l.transfer(msg, dest, models.TmpCopy, models.TmpMove)
	return l.counts
}

func (l *Ledger) transfer(
	msg *models.Message, dest *models.Folder, set, clear models.TmpFlag,
) {
	msg.ToFolder = dest
	if msg.Flags.IsDeleted() {
		l.counts.Deleted--
		msg.Flags.Unset(models.FlagDeleted)
	}
	if msg.Flags.HasTmp(clear) {
		l.bump(clear, -1)
		msg.Flags.UnsetTmp(clear)
	}
	if !msg.Flags.HasTmp(set) {
		msg.Flags.SetTmp(set)
		l.bump(set, 1)
	}
}

func (l *Ledger) bump(flag models.TmpFlag, delta int) {
	switch flag {
	case models.TmpMove:
		l.counts.Moved += delta
	case models.TmpCopy:
		l.counts.Copied += delta
	}
}

// SetColorLabel replaces the color label, 0 clears it.
func (l *Ledger) SetColorLabel(msg *models.Message, label int) Counts {
	msg.Flags.SetColorLabel(label)
	return l.counts
}

// Recount derives the counters from scratch. Invalid messages are ignored.
func (l *Ledger) Recount(msgs []*models.Message) Counts {
	var counts Counts
	for _, msg := range msgs {
		if msg.Flags.IsInvalid() {
			continue
		}
		counts.TotalSize += msg.Size
		switch {
		case msg.Flags.IsDeleted():
			counts.Deleted++
		case msg.Flags.IsMove():
			counts.Moved++
		case msg.Flags.IsCopy():
			counts.Copied++
		}
	}
	l.counts = counts
	return counts
}
