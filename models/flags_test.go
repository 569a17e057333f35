package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_ColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		label int
		want  int
	}{
		{name: "none", label: 0, want: 0},
		{name: "first", label: 1, want: 1},
		{name: "max", label: 7, want: 7},
		{name: "too big", label: 12, want: 7},
		{name: "negative", label: -3, want: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := Flags{Perm: FlagUnread | FlagMime}
			f.SetColorLabel(5)
			f.SetColorLabel(test.label)
			if got := f.ColorLabel(); got != test.want {
				t.Errorf("got: %d, but wanted: %d", got, test.want)
			}
			// other bits must survive a label change
			assert.True(t, f.IsUnread())
			assert.True(t, f.IsMime())
		})
	}
}

func TestFlags_Tmp(t *testing.T) {
	var f Flags
	f.SetTmp(TmpMove)
	assert.True(t, f.IsMove())
	assert.False(t, f.IsCopy())
	f.SetTmp(TmpInvalid)
	f.UnsetTmp(TmpMove)
	assert.False(t, f.IsMove())
	assert.True(t, f.IsInvalid())
}

func TestFlags_String(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{flags: Flags{}, want: "    "},
		{flags: Flags{Perm: FlagNew | FlagMarked}, want: "N*  "},
		{flags: Flags{Perm: FlagUnread | FlagDeleted | FlagMime}, want: "UDa "},
		{flags: Flags{Perm: FlagReplied, Tmp: TmpMove}, want: "ro  "},
		{flags: Flags{Perm: FlagForwarded | 3<<colorLabelShift, Tmp: TmpCopy}, want: "fc 3"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.flags.String())
	}
}

func TestMessage_ReplyTo(t *testing.T) {
	msg := &Message{MessageId: "a@x", References: []string{"b@x", "c@x"}}
	assert.Equal(t, "c@x", msg.ReplyTo())
	msg.InReplyTo = "b@x"
	assert.Equal(t, "b@x", msg.ReplyTo())
	msg.InReplyTo = "a@x"
	assert.Equal(t, "", msg.ReplyTo())
}

func TestMessage_Same(t *testing.T) {
	inbox := &Folder{Path: "INBOX"}
	other := &Folder{Path: "INBOX"}
	a := &Message{Uid: 3, Folder: inbox}
	b := &Message{Uid: 3, Folder: other}
	c := &Message{Uid: 4, Folder: inbox}
	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
	assert.False(t, a.Same(nil))
}
