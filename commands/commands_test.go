package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ini/ini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/lib"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/memory"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

type fixture struct {
	ctx     *Context
	out     *bytes.Buffer
	backend *memory.Store
	inbox   *models.Folder
	trash   *models.Folder
	archive *models.Folder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conf, err := config.ParseConfig(ini.Empty())
	require.NoError(t, err)
	conf.Summary.Threaded = false

	f := &fixture{backend: memory.New(), out: &bytes.Buffer{}}
	f.inbox = f.backend.AddFolder("INBOX", models.FolderInbox)
	f.trash = f.backend.AddFolder("Trash", models.FolderTrash)
	f.archive = f.backend.AddFolder("Archive", models.FolderNormal)
	date := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	f.backend.Append(f.inbox,
		&models.Message{Uid: 1, Subject: "hello world", From: "alice",
			MessageId: "<1@x>", Date: date, Size: 100},
		&models.Message{Uid: 2, Subject: "re: hello world", From: "bob",
			MessageId: "<2@x>", Date: date.Add(time.Hour), Size: 100},
		&models.Message{Uid: 3, Subject: "other", From: "carol",
			MessageId: "<3@x>", Date: date.Add(2 * time.Hour), Size: 100},
	)
	store := lib.NewMessageStore(f.backend, f.inbox, conf)
	require.NoError(t, store.Load(context.Background()))
	f.ctx = &Context{
		Ctx:     context.Background(),
		Store:   store,
		Backend: f.backend,
		Out:     f.out,
		Width:   80,
	}
	return f
}

func (f *fixture) run(t *testing.T, cmdline string) error {
	t.Helper()
	return GlobalCommands.ExecuteCommand(f.ctx, cmdline)
}

func (f *fixture) selected() models.UID {
	if msg := f.ctx.Store.SelectedMessage(); msg != nil {
		return msg.Uid
	}
	return 0
}

func TestExecuteCommand_Unknown(t *testing.T) {
	f := setup(t)
	assert.NoError(t, f.run(t, ""))
	assert.NoError(t, f.run(t, "   "))

	err := f.run(t, "lst")
	var unknown NoSuchCommand
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "lst", unknown.Name)
	assert.Contains(t, unknown.Suggestions, "list")

	assert.Error(t, f.run(t, `move "unterminated`))
}

func TestExecuteCommand_Quit(t *testing.T) {
	f := setup(t)
	var exit ErrorExit
	assert.True(t, errors.As(f.run(t, "quit"), &exit))
}

func TestCommands_List(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "list"))
	out := f.out.String()
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "2023-04-01")
	assert.Contains(t, out, "> ")
}

func TestCommands_Navigate(t *testing.T) {
	f := setup(t)
	assert.Equal(t, models.UID(1), f.selected())

	require.NoError(t, f.run(t, "next"))
	assert.Equal(t, models.UID(2), f.selected())
	require.NoError(t, f.run(t, "prev"))
	assert.Equal(t, models.UID(1), f.selected())
	require.NoError(t, f.run(t, "select 3"))
	assert.Equal(t, models.UID(3), f.selected())

	assert.Error(t, f.run(t, "select 4"))
	assert.Error(t, f.run(t, "next two"))

	require.NoError(t, f.run(t, "label 2"))
	require.NoError(t, f.run(t, "select 1"))
	require.NoError(t, f.run(t, "next -l"))
	assert.Equal(t, models.UID(3), f.selected())
}

func TestCommands_DeleteExecute(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "select 3"))
	require.NoError(t, f.run(t, "delete"))
	assert.Equal(t, 1, f.ctx.Store.Counts().Deleted)

	require.NoError(t, f.run(t, "execute"))
	assert.Contains(t, f.out.String(), "0 moved, 0 copied, 1 deleted")
	assert.Len(t, f.backend.Contents(f.trash), 1)
	assert.Len(t, f.backend.Contents(f.inbox), 2)
	assert.Equal(t, 2, f.ctx.Store.Len())
}

func TestCommands_ExecuteFailure(t *testing.T) {
	f := setup(t)
	f.backend.Fail(types.OpMove, "Archive", errors.New("quota exceeded"))
	require.NoError(t, f.run(t, "move arch"))
	err := f.run(t, "execute")
	require.Error(t, err)
	assert.Contains(t, f.out.String(), "quota exceeded")
	assert.Equal(t, 1, f.ctx.Store.Counts().Moved)
}

func TestCommands_MoveCopy(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "move Archive"))
	msg := f.ctx.Store.Message(f.ctx.Store.Key(1))
	assert.True(t, msg.Flags.IsMove())
	assert.Equal(t, "Archive", msg.ToFolder.Path)

	require.NoError(t, f.run(t, "select 2"))
	require.NoError(t, f.run(t, "cp arch"))
	assert.True(t, f.ctx.Store.Message(f.ctx.Store.Key(2)).Flags.IsCopy())

	assert.ErrorIs(t, f.run(t, "move Nowhere"), types.ErrNoFolder)
	assert.ErrorIs(t, f.run(t, "move INBOX"), types.ErrSameFolder)
	assert.Error(t, f.run(t, "move"))
}

func TestCommands_TagMark(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "tag -a"))
	require.NoError(t, f.run(t, "mark"))
	for _, msg := range f.ctx.Store.Messages() {
		assert.True(t, msg.Flags.IsMarked(), msg)
	}

	require.NoError(t, f.run(t, "tag -c"))
	assert.Empty(t, f.ctx.Store.Marker().Marked())
	require.NoError(t, f.run(t, "unmark"))
	assert.False(t, f.ctx.Store.Message(f.ctx.Store.Key(1)).Flags.IsMarked())
	assert.True(t, f.ctx.Store.Message(f.ctx.Store.Key(2)).Flags.IsMarked())

	assert.Error(t, f.run(t, "tag -a -v"))
}

func TestCommands_ReadLabel(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "unread"))
	assert.Equal(t, 1, f.inbox.Unread)
	require.NoError(t, f.run(t, "read -a"))
	assert.Equal(t, 0, f.inbox.Unread)
	assert.Error(t, f.run(t, "unread -a"))

	assert.Error(t, f.run(t, "label 9"))
	assert.Error(t, f.run(t, "label red"))
	require.NoError(t, f.run(t, "label 3"))
	assert.Equal(t, 3, f.ctx.Store.SelectedMessage().Flags.ColorLabel())
}

func TestCommands_Filter(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, `filter -s "^hello" -m Archive -M`))
	assert.Contains(t, f.out.String(), "filter matched 1 messages")
	msg := f.ctx.Store.Message(f.ctx.Store.Key(1))
	assert.True(t, msg.Flags.IsMove())
	assert.True(t, msg.Flags.IsMarked())
	assert.False(t, f.ctx.Store.Message(f.ctx.Store.Key(2)).Flags.IsMove())

	require.NoError(t, f.run(t, "filter -f carol -d -l 4"))
	carol := f.ctx.Store.Message(f.ctx.Store.Key(3))
	assert.True(t, carol.Flags.IsDeleted())
	assert.Equal(t, 4, carol.Flags.ColorLabel())

	tests := []string{
		"filter",
		"filter -s (",
		"filter -m Archive -c Archive",
		"filter -d extra",
	}
	for _, cmdline := range tests {
		assert.Error(t, f.run(t, cmdline), cmdline)
	}
}

func TestCommands_Threads(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "toggle-threads"))
	assert.True(t, f.ctx.Store.Threaded())
	require.NoError(t, f.run(t, "unthread"))
	assert.False(t, f.ctx.Store.Threaded())

	require.NoError(t, f.run(t, "sort -r date"))
	assert.Equal(t, []models.UID{3, 2, 1}, f.ctx.Store.Uids())
	require.NoError(t, f.run(t, "sort"))
	assert.Equal(t, []models.UID{1, 2, 3}, f.ctx.Store.Uids())
	assert.Error(t, f.run(t, "sort weight"))
	assert.Error(t, f.run(t, "attract maybe"))
}

func TestCommands_ChangeFolder(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "move Archive"))
	require.NoError(t, f.run(t, "cd arch"))
	assert.Equal(t, "Archive", f.ctx.Store.Folder().Path)
	assert.Contains(t, f.out.String(), "1 moves and 0 copies discarded")
	assert.Zero(t, f.ctx.Store.Len())

	require.NoError(t, f.run(t, "folders"))
	assert.Contains(t, f.out.String(), "> Archive")
}

func TestFindFolder(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name string
		want string
	}{
		{"INBOX", "INBOX"},
		{"arch", "Archive"},
		{"trsh", "Trash"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			folder, err := FindFolder(f.backend, test.name)
			require.NoError(t, err)
			assert.Equal(t, test.want, folder.Path)
		})
	}
	_, err := FindFolder(f.backend, "zzz")
	assert.ErrorIs(t, err, types.ErrNoFolder)
}

func TestColumn(t *testing.T) {
	assert.Equal(t, "ab  ", column("ab", 4))
	assert.Equal(t, "héll…", column("héllo wörld", 5))
	assert.Equal(t, "a b", column("a\tb", 3))
	assert.Equal(t, "", column("abc", 0))
}

func TestCommands_Status(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.run(t, "delete"))
	require.NoError(t, f.run(t, "status"))
	out := f.out.String()
	assert.Contains(t, out, "INBOX: 0 new, 0 unread, 3 total")
	assert.Contains(t, out, "1 deleted, 0 moved, 0 copied")
	assert.Contains(t, out, "selected: re: hello world")
}
