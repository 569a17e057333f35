// Package maildir implements a message store over a tree of maildir folders.
package maildir

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/handlers"
	"git.sr.ht/~rjarry/sumview/worker/lib"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

type Options struct {
	Root string
	// Maildir++ layout
	MaildirPP bool
	// folder used as trash, none when empty
	Trash string
	// file of "name = path" lines renaming folders
	FolderMap string
}

type Store struct {
	c       *Container
	opts    Options
	folders map[string]*models.Folder
	aliases map[string]string
	trash   *models.Folder
}

func New(opts Options) (*Store, error) {
	c, err := NewContainer(opts.Root, opts.MaildirPP)
	if err != nil {
		return nil, errors.Wrap(err, "maildir")
	}
	s := &Store{c: c, opts: opts, aliases: make(map[string]string)}
	if opts.FolderMap != "" {
		f, err := os.Open(opts.FolderMap)
		if err != nil {
			return nil, errors.Wrap(err, "folder-map")
		}
		defer f.Close()
		fmap, _, err := lib.ParseFolderMap(f)
		if err != nil {
			return nil, errors.Wrapf(err, "folder-map %s", opts.FolderMap)
		}
		s.aliases = fmap
	}
	if err := s.Rescan(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rescan refreshes the folder list from the file system. Known folders keep
// their identity.
func (s *Store) Rescan() error {
	names, err := s.c.ListFolders()
	if err != nil {
		return errors.Wrap(err, "could not list folders")
	}
	display := make(map[string]string, len(s.aliases))
	for name, path := range s.aliases {
		display[path] = name
	}
	folders := make(map[string]*models.Folder, len(names))
	for _, path := range names {
		f, ok := s.folders[path]
		if !ok {
			name := path
			if alias, ok := display[path]; ok {
				name = alias
			}
			f = &models.Folder{Path: path, Name: name, Kind: kindOf(path, s.opts.Trash)}
		}
		folders[path] = f
	}
	s.folders = folders
	s.trash = nil
	if s.opts.Trash != "" {
		s.trash, _ = s.Folder(s.opts.Trash)
	}
	log.Debugf("maildir %s: %d folders", s.opts.Root, len(folders))
	return nil
}

func kindOf(path string, trash string) models.FolderKind {
	switch {
	case trash != "" && path == trash:
		return models.FolderTrash
	case strings.EqualFold(path, "INBOX"):
		return models.FolderInbox
	case strings.EqualFold(filepath.Base(path), "Drafts"):
		return models.FolderDraft
	}
	return models.FolderNormal
}

func (s *Store) Folders() []*models.Folder {
	folders := make([]*models.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Path < folders[j].Path
	})
	return folders
}

// Folder returns the folder at path. Folder map names are accepted too.
func (s *Store) Folder(path string) (*models.Folder, error) {
	if real, ok := s.aliases[path]; ok {
		path = real
	}
	if f, ok := s.folders[path]; ok {
		return f, nil
	}
	return nil, errors.Wrap(types.ErrNoFolder, path)
}

func (s *Store) Trash() *models.Folder {
	return s.trash
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(types.ErrStoreUnavailable, err.Error())
	}
	if !s.c.Available() {
		return errors.Wrap(types.ErrStoreUnavailable, s.opts.Root)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, folder *models.Folder) ([]*models.Message, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if _, ok := s.folders[folder.Path]; !ok {
		return nil, errors.Wrap(types.ErrNoFolder, folder.Path)
	}
	uids, recent, err := s.c.OpenDirectory(folder.Path)
	if err != nil {
		return nil, err
	}
	msgs := make([]*models.Message, 0, len(uids))
	for _, uid := range uids {
		m, err := s.c.Message(folder.Path, uid)
		if err != nil {
			return nil, err
		}
		msg, err := m.Summary(folder, recent[uid])
		if err != nil {
			log.Warnf("%s: skipping message %d: %v", folder, uid, err)
			continue
		}
		msgs = append(msgs, msg)
	}
	folder.Total = len(msgs)
	return msgs, nil
}

func (s *Store) MoveMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	for src, uids := range bySource(msgs) {
		if err := s.c.MoveAll(dest.Path, src, uids); err != nil {
			return errors.Wrapf(err, "move %d messages to %s", len(uids), dest)
		}
	}
	return nil
}

func (s *Store) CopyMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	for src, uids := range bySource(msgs) {
		if err := s.c.CopyAll(dest.Path, src, uids); err != nil {
			return errors.Wrapf(err, "copy %d messages to %s", len(uids), dest)
		}
	}
	return nil
}

func (s *Store) RemoveMessages(ctx context.Context, msgs []*models.Message) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	for src, uids := range bySource(msgs) {
		if _, err := s.c.DeleteAll(src, uids); err != nil {
			return errors.Wrapf(err, "remove %d messages", len(uids))
		}
	}
	return nil
}

func bySource(msgs []*models.Message) map[string][]models.UID {
	groups := make(map[string][]models.UID)
	for _, msg := range msgs {
		groups[msg.Folder.Path] = append(groups[msg.Folder.Path], msg.Uid)
	}
	return groups
}

// Watch registers the directories of folder with w.
func (s *Store) Watch(w types.FSWatcher, folder *models.Folder) error {
	dir := string(s.c.Dir(folder.Path))
	for _, sub := range []string{"cur", "new"} {
		if err := w.Add(filepath.Join(dir, sub)); err != nil {
			return errors.Wrapf(err, "watch %s", folder)
		}
	}
	return nil
}

// Unwatch is the reverse of Watch.
func (s *Store) Unwatch(w types.FSWatcher, folder *models.Folder) {
	dir := string(s.c.Dir(folder.Path))
	for _, sub := range []string{"cur", "new"} {
		_ = w.Remove(filepath.Join(dir, sub))
	}
}

// Vanished returns the UID of the message that was stored in filename when
// no file holds it anymore. Files renamed by a flag change still resolve.
func (s *Store) Vanished(folder *models.Folder, filename string) (models.UID, bool) {
	key := lib.KeyFromFilename(filename)
	uid, ok := s.c.UIDs(folder.Path).GetUID(key)
	if !ok {
		return 0, false
	}
	if _, err := s.c.Dir(folder.Path).Filename(key); err == nil {
		return 0, false
	}
	return uid, true
}

func init() {
	handlers.RegisterStoreFactory("maildir", newStore(false))
	handlers.RegisterStoreFactory("maildirpp", newStore(true))
}

func newStore(maildirpp bool) handlers.FactoryFunc {
	return func(conf *config.StoreConfig) (types.Store, error) {
		return New(Options{
			Root:      conf.Path(),
			MaildirPP: maildirpp,
			Trash:     conf.Trash,
			FolderMap: conf.FolderMap,
		})
	}
}
