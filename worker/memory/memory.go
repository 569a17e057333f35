// Package memory implements a message store held in memory. It backs the
// tests and the demo mode of the command line.
package memory

import (
	"context"
	"fmt"
	"sort"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// A Call records one batch call received by the store.
type Call struct {
	Op   types.BatchOp
	Dest string
	Uids []models.UID
}

type failure struct {
	op   types.BatchOp
	dest string
}

type Store struct {
	folders  map[string]*models.Folder
	contents map[string][]*models.Message
	nextUid  map[string]models.UID
	trash    *models.Folder
	cache    map[string][]*models.Message

	failures    map[failure]error
	unavailable bool

	Calls []Call
}

func New() *Store {
	return &Store{
		folders:  make(map[string]*models.Folder),
		contents: make(map[string][]*models.Message),
		nextUid:  make(map[string]models.UID),
		cache:    make(map[string][]*models.Message),
		failures: make(map[failure]error),
	}
}

// AddFolder creates a folder. The first trash folder becomes the store's
// trash.
func (s *Store) AddFolder(path string, kind models.FolderKind) *models.Folder {
	if f, ok := s.folders[path]; ok {
		return f
	}
	f := &models.Folder{Path: path, Name: path, Kind: kind}
	s.folders[path] = f
	s.nextUid[path] = 1
	if kind == models.FolderTrash && s.trash == nil {
		s.trash = f
	}
	return f
}

// Append stores copies of msgs in folder. A zero uid is replaced by the next
// free one.
func (s *Store) Append(folder *models.Folder, msgs ...*models.Message) {
	for _, msg := range msgs {
		c := clone(msg)
		c.Folder = folder
		c.ToFolder = nil
		c.Flags.Tmp = 0
		if c.Uid == 0 {
			c.Uid = s.nextUid[folder.Path]
		}
		if c.Uid >= s.nextUid[folder.Path] {
			s.nextUid[folder.Path] = c.Uid + 1
		}
		s.contents[folder.Path] = append(s.contents[folder.Path], c)
	}
	folder.Total = len(s.contents[folder.Path])
}

// Contents returns the messages of folder as the store holds them.
func (s *Store) Contents(folder *models.Folder) []*models.Message {
	return s.contents[folder.Path]
}

// Fail makes every later op batch to dest fail with err. An empty dest
// matches the permanent removal.
func (s *Store) Fail(op types.BatchOp, dest string, err error) {
	s.failures[failure{op: op, dest: dest}] = err
}

// SetUnavailable makes every call fail with types.ErrStoreUnavailable.
func (s *Store) SetUnavailable(unavailable bool) {
	s.unavailable = unavailable
}

func (s *Store) check(ctx context.Context, op types.BatchOp, dest string) error {
	if s.unavailable {
		return fmt.Errorf("memory: %w", types.ErrStoreUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%v: %w", err, types.ErrStoreUnavailable)
	}
	return s.failures[failure{op: op, dest: dest}]
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

func (s *Store) Folder(path string) (*models.Folder, error) {
	if f, ok := s.folders[path]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%s: %w", path, types.ErrNoFolder)
}

func (s *Store) Trash() *models.Folder {
	return s.trash
}

func (s *Store) ListMessages(ctx context.Context, folder *models.Folder) ([]*models.Message, error) {
	if s.unavailable {
		return nil, fmt.Errorf("memory: %w", types.ErrStoreUnavailable)
	}
	if _, ok := s.folders[folder.Path]; !ok {
		return nil, fmt.Errorf("%s: %w", folder.Path, types.ErrNoFolder)
	}
	msgs := make([]*models.Message, 0, len(s.contents[folder.Path]))
	for _, msg := range s.contents[folder.Path] {
		msgs = append(msgs, clone(msg))
	}
	return msgs, nil
}

func (s *Store) MoveMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error {
	if err := s.copy(ctx, types.OpMove, msgs, dest); err != nil {
		return err
	}
	s.drop(msgs)
	return nil
}

func (s *Store) CopyMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error {
	return s.copy(ctx, types.OpCopy, msgs, dest)
}

func (s *Store) copy(
	ctx context.Context, op types.BatchOp, msgs []*models.Message, dest *models.Folder,
) error {
	s.record(op, dest.Path, msgs)
	if err := s.check(ctx, op, dest.Path); err != nil {
		return err
	}
	target, ok := s.folders[dest.Path]
	if !ok {
		return fmt.Errorf("%s: %w", dest.Path, types.ErrNoFolder)
	}
	for _, msg := range msgs {
		c := clone(msg)
		c.Uid = 0
		c.Flags.Unset(models.FlagDeleted)
		s.Append(target, c)
	}
	return nil
}

func (s *Store) RemoveMessages(ctx context.Context, msgs []*models.Message) error {
	s.record(types.OpDelete, "", msgs)
	if err := s.check(ctx, types.OpDelete, ""); err != nil {
		return err
	}
	s.drop(msgs)
	return nil
}

func (s *Store) drop(msgs []*models.Message) {
	gone := make(map[string]map[models.UID]bool)
	for _, msg := range msgs {
		if gone[msg.Folder.Path] == nil {
			gone[msg.Folder.Path] = make(map[models.UID]bool)
		}
		gone[msg.Folder.Path][msg.Uid] = true
	}
	for path, uids := range gone {
		var kept []*models.Message
		for _, msg := range s.contents[path] {
			if !uids[msg.Uid] {
				kept = append(kept, msg)
			}
		}
		s.contents[path] = kept
		if f, ok := s.folders[path]; ok {
			f.Total = len(kept)
		}
	}
}

func (s *Store) record(op types.BatchOp, dest string, msgs []*models.Message) {
	call := Call{Op: op, Dest: dest}
	for _, msg := range msgs {
		call.Uids = append(call.Uids, msg.Uid)
	}
	s.Calls = append(s.Calls, call)
}

func (s *Store) ReadCache(ctx context.Context, folder *models.Folder) ([]*models.Message, error) {
	return s.cache[folder.Path], nil
}

func (s *Store) WriteCache(ctx context.Context, folder *models.Folder, msgs []*models.Message) error {
	snapshot := make([]*models.Message, 0, len(msgs))
	for _, msg := range msgs {
		snapshot = append(snapshot, clone(msg))
	}
	s.cache[folder.Path] = snapshot
	return nil
}

func clone(msg *models.Message) *models.Message {
	c := *msg
	c.References = append([]string(nil), msg.References...)
	return &c
}
