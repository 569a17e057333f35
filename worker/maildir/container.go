package maildir

import (
	"sort"

	"github.com/emersion/go-maildir"
	"github.com/pkg/errors"

	"git.sr.ht/~rjarry/sumview/lib/uidstore"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/lib"
)

// A Container is a directory which contains other directories which adhere to
// the Maildir spec
type Container struct {
	store *lib.MaildirStore
	uids  map[string]*uidstore.Store
}

func NewContainer(dir string, maildirpp bool) (*Container, error) {
	store, err := lib.NewMaildirStore(dir, maildirpp)
	if err != nil {
		return nil, err
	}
	return &Container{store: store, uids: make(map[string]*uidstore.Store)}, nil
}

// ListFolders returns the maildir folders of the container, sorted.
func (c *Container) ListFolders() ([]string, error) {
	dirs, err := c.store.FolderMap()
	if err != nil {
		return nil, err
	}
	folders := make([]string, 0, len(dirs))
	for name := range dirs {
		folders = append(folders, name)
	}
	sort.Strings(folders)
	return folders, nil
}

func (c *Container) Available() bool {
	return c.store.Available()
}

func (c *Container) Dir(name string) maildir.Dir {
	return c.store.Dir(name)
}

func (c *Container) UIDs(name string) *uidstore.Store {
	s, ok := c.uids[name]
	if !ok {
		s = uidstore.NewStore()
		c.uids[name] = s
	}
	return s
}

// OpenDirectory moves the new messages of folder name into cur. It returns
// the UIDs of every message and the set of the ones that were new.
func (c *Container) OpenDirectory(name string) ([]models.UID, map[models.UID]bool, error) {
	dir := c.Dir(name)
	uids := c.UIDs(name)
	unseen, err := dir.Unseen()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not open %s", name)
	}
	recent := make(map[models.UID]bool, len(unseen))
	for _, key := range unseen {
		recent[uids.GetOrInsert(key)] = true
	}
	keys, err := dir.Keys()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not get keys for %s", name)
	}
	sort.Strings(keys)
	all := make([]models.UID, 0, len(keys))
	for _, key := range keys {
		all = append(all, uids.GetOrInsert(key))
	}
	return all, recent, nil
}

// Message returns the message of folder name with the given UID.
func (c *Container) Message(name string, uid models.UID) (*Message, error) {
	if key, ok := c.UIDs(name).GetKey(uid); ok {
		return &Message{dir: c.Dir(name), uid: uid, key: key}, nil
	}
	return nil, errors.Errorf("could not find message with uid %d in maildir %s",
		uid, name)
}

// messages resolves every uid before anything is touched so that a batch
// with an unknown message fails as a whole.
func (c *Container) messages(name string, uids []models.UID) ([]*Message, error) {
	msgs := make([]*Message, 0, len(uids))
	for _, uid := range uids {
		m, err := c.Message(name, uid)
		if err != nil {
			return nil, err
		}
		if _, err := m.Filename(); err != nil {
			return nil, errors.Wrapf(err, "message %d", uid)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// DeleteAll deletes a set of messages by UID and returns the subset of UIDs
// which were successfully deleted, stopping upon the first error.
func (c *Container) DeleteAll(name string, uids []models.UID) ([]models.UID, error) {
	msgs, err := c.messages(name, uids)
	if err != nil {
		return nil, err
	}
	var success []models.UID
	for _, m := range msgs {
		if err := m.Remove(); err != nil {
			return success, err
		}
		c.UIDs(name).RemoveUID(m.uid)
		success = append(success, m.uid)
	}
	return success, nil
}

func (c *Container) CopyAll(dest string, src string, uids []models.UID) error {
	msgs, err := c.messages(src, uids)
	if err != nil {
		return err
	}
	target := c.Dir(dest)
	for _, m := range msgs {
		if _, err := m.dir.Copy(target, m.key); err != nil {
			return errors.Wrapf(err, "could not copy message %d", m.uid)
		}
	}
	return nil
}

// MoveAll copies the messages then deletes the originals.
func (c *Container) MoveAll(dest string, src string, uids []models.UID) error {
	if err := c.CopyAll(dest, src, uids); err != nil {
		return err
	}
	_, err := c.DeleteAll(src, uids)
	return err
}
