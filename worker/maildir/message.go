package maildir

import (
	"io"

	"github.com/emersion/go-maildir"
	"github.com/pkg/errors"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/lib"
)

// A Message is an individual email inside of a maildir.Dir.
type Message struct {
	dir maildir.Dir
	uid models.UID
	key string
}

func (m Message) NewReader() (io.ReadCloser, error) {
	return m.dir.Open(m.key)
}

func (m Message) Filename() (string, error) {
	return m.dir.Filename(m.key)
}

func (m Message) Flags() ([]maildir.Flag, error) {
	return m.dir.Flags(m.key)
}

// Remove deletes the email immediately.
func (m Message) Remove() error {
	return m.dir.Remove(m.key)
}

// Summary reads the header of the message file into a models.Message.
func (m Message) Summary(folder *models.Folder, recent bool) (*models.Message, error) {
	filename, err := m.Filename()
	if err != nil {
		return nil, err
	}
	size, err := lib.FileSize(filename)
	if err != nil {
		return nil, err
	}
	flags, err := m.Flags()
	if err != nil {
		return nil, errors.Wrap(err, "could not read flags")
	}
	r, err := m.NewReader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	h, err := lib.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Uid:    m.uid,
		Folder: folder,
		Size:   size,
		Flags:  models.Flags{Perm: lib.FromMaildirFlags(flags)},
	}
	if recent {
		msg.Flags.Set(models.FlagNew)
	}
	if err := lib.FillSummary(msg, h); err != nil {
		return nil, err
	}
	return msg, nil
}
