package models

import (
	"fmt"
	"time"
)

// UID identifies a message inside its folder. It stays stable for the
// lifetime of a folder view session.
type UID uint32

type FolderKind int

const (
	FolderNormal FolderKind = iota
	FolderInbox
	FolderOutbox
	FolderDraft
	FolderQueue
	FolderTrash
)

func (k FolderKind) String() string {
	switch k {
	case FolderInbox:
		return "inbox"
	case FolderOutbox:
		return "outbox"
	case FolderDraft:
		return "draft"
	case FolderQueue:
		return "queue"
	case FolderTrash:
		return "trash"
	}
	return "normal"
}

// A Folder is a message container of the external store.
type Folder struct {
	Path string
	Name string
	Kind FolderKind

	// Counters maintained while messages are read or marked unread
	New    int
	Unread int
	Total  int
}

func (f *Folder) IsTrash() bool {
	return f != nil && f.Kind == FolderTrash
}

func (f *Folder) String() string {
	if f == nil {
		return "<none>"
	}
	return f.Path
}

// Same reports whether both folders designate the same store location.
func (f *Folder) Same(other *Folder) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Path == other.Path
}

// A Message holds the header summary of one message and its flags. The
// external store owns the data, the engine only keeps transient views over
// it.
type Message struct {
	Uid    UID
	Folder *Folder

	Subject    string
	From       string
	To         string
	MessageId  string
	InReplyTo  string
	References []string
	Date       time.Time
	Size       int64

	Flags Flags

	// Destination of a pending move or copy
	ToFolder *Folder
}

// Same reports whether both messages are the same stored message.
func (m *Message) Same(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Uid == other.Uid && m.Folder.Same(other.Folder)
}

// ReplyTo returns the message-id this message answers to: In-Reply-To when
// set, else the last References entry. Self references are ignored.
func (m *Message) ReplyTo() string {
	ref := m.InReplyTo
	if ref == "" && len(m.References) > 0 {
		ref = m.References[len(m.References)-1]
	}
	if ref == m.MessageId {
		return ""
	}
	return ref
}

func (m *Message) String() string {
	return fmt.Sprintf("%s/%d", m.Folder, m.Uid)
}
