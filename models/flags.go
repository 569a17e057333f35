package models

import "strings"

// PermFlag holds the flags persisted across sessions.
type PermFlag uint32

const (
	FlagNew PermFlag = 1 << iota
	FlagUnread
	FlagMarked
	FlagDeleted
	FlagReplied
	FlagForwarded
	FlagMime
)

const (
	colorLabelShift          = 7
	ColorLabelMask  PermFlag = 7 << colorLabelShift
	MaxColorLabel            = 7
)

// TmpFlag holds the session only flags.
type TmpFlag uint32

const (
	TmpMove TmpFlag = 1 << iota
	TmpCopy
	TmpInvalid
)

// Flags is the full flag set of a message.
type Flags struct {
	Perm PermFlag
	Tmp  TmpFlag
}

func (f Flags) Has(flag PermFlag) bool {
	return f.Perm&flag != 0
}

func (f *Flags) Set(flag PermFlag) {
	f.Perm |= flag
}

func (f *Flags) Unset(flag PermFlag) {
	f.Perm &^= flag
}

func (f Flags) HasTmp(flag TmpFlag) bool {
	return f.Tmp&flag != 0
}

func (f *Flags) SetTmp(flag TmpFlag) {
	f.Tmp |= flag
}

func (f *Flags) UnsetTmp(flag TmpFlag) {
	f.Tmp &^= flag
}

func (f Flags) IsNew() bool       { return f.Has(FlagNew) }
func (f Flags) IsUnread() bool    { return f.Has(FlagUnread) }
func (f Flags) IsMarked() bool    { return f.Has(FlagMarked) }
func (f Flags) IsDeleted() bool   { return f.Has(FlagDeleted) }
func (f Flags) IsReplied() bool   { return f.Has(FlagReplied) }
func (f Flags) IsForwarded() bool { return f.Has(FlagForwarded) }
func (f Flags) IsMime() bool      { return f.Has(FlagMime) }
func (f Flags) IsMove() bool      { return f.HasTmp(TmpMove) }
func (f Flags) IsCopy() bool      { return f.HasTmp(TmpCopy) }
func (f Flags) IsInvalid() bool   { return f.HasTmp(TmpInvalid) }

// ColorLabel returns the label value, 0 meaning none.
func (f Flags) ColorLabel() int {
	return int((f.Perm & ColorLabelMask) >> colorLabelShift)
}

// SetColorLabel replaces the label value. Out of range values are clamped.
func (f *Flags) SetColorLabel(label int) {
	switch {
	case label < 0:
		label = 0
	case label > MaxColorLabel:
		label = MaxColorLabel
	}
	f.Perm &^= ColorLabelMask
	f.Perm |= PermFlag(label) << colorLabelShift
}

// String renders the flags as the short status column of a message list.
func (f Flags) String() string {
	var b strings.Builder
	switch {
	case f.IsNew():
		b.WriteByte('N')
	case f.IsUnread():
		b.WriteByte('U')
	case f.IsReplied():
		b.WriteByte('r')
	case f.IsForwarded():
		b.WriteByte('f')
	default:
		b.WriteByte(' ')
	}
	switch {
	case f.IsDeleted():
		b.WriteByte('D')
	case f.IsMove():
		b.WriteByte('o')
	case f.IsCopy():
		b.WriteByte('c')
	case f.IsMarked():
		b.WriteByte('*')
	default:
		b.WriteByte(' ')
	}
	if f.IsMime() {
		b.WriteByte('a')
	} else {
		b.WriteByte(' ')
	}
	if label := f.ColorLabel(); label > 0 {
		b.WriteByte(byte('0' + label))
	} else {
		b.WriteByte(' ')
	}
	return b.String()
}
