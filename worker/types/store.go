package types

import (
	"context"

	"git.sr.ht/~rjarry/sumview/models"
)

// Store is the message store backing a message list. Batch calls either
// apply to the whole batch or fail. Implementations wrap ErrStoreUnavailable
// when the call could not run at all.
type Store interface {
	Folders() []*models.Folder
	Folder(path string) (*models.Folder, error)
	// Trash returns the trash folder, nil if the store has none.
	Trash() *models.Folder

	ListMessages(ctx context.Context, folder *models.Folder) ([]*models.Message, error)
	MoveMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error
	CopyMessages(ctx context.Context, msgs []*models.Message, dest *models.Folder) error
	RemoveMessages(ctx context.Context, msgs []*models.Message) error
}

// Cache persists flag snapshots of a folder between sessions.
type Cache interface {
	ReadCache(ctx context.Context, folder *models.Folder) ([]*models.Message, error)
	WriteCache(ctx context.Context, folder *models.Folder, msgs []*models.Message) error
}
