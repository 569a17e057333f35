package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/mattn/go-isatty"

	"git.sr.ht/~rjarry/sumview/commands"
	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/lib"
	"git.sr.ht/~rjarry/sumview/lib/cache"
	"git.sr.ht/~rjarry/sumview/lib/ledger"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker"
	"git.sr.ht/~rjarry/sumview/worker/lib/watchers"
	"git.sr.ht/~rjarry/sumview/worker/memory"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// set at build time
var Version string

func buildInfo() string {
	return fmt.Sprintf("%s (%s %s %s)", Version,
		runtime.Version(), runtime.GOARCH, runtime.GOOS)
}

func usage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	fmt.Fprintln(os.Stderr, "usage: sumview [-v] [-D] [-c <config>] [-f <folder>]")
	os.Exit(1)
}

// watchable stores report changes made by other programs.
type watchable interface {
	Watch(w types.FSWatcher, folder *models.Folder) error
	Unwatch(w types.FSWatcher, folder *models.Folder)
	Vanished(folder *models.Folder, filename string) (models.UID, bool)
}

type statusListener struct{}

func (statusListener) SelectionChanged(msg *models.Message) {
	if msg != nil {
		log.Tracef("selected %s", msg)
	}
}

func (statusListener) DisplayedChanged(msg *models.Message) {
	if msg == nil {
		log.Tracef("displayed message closed")
	}
}

func (statusListener) CountsChanged(counts ledger.Counts) {
	log.Tracef("pending: %s", counts)
}

func main() {
	defer log.PanicHandler()
	opts, optind, err := getopt.Getopts(os.Args, "vDc:f:")
	if err != nil {
		usage("error: " + err.Error())
		return
	}
	confPath := config.DefaultPath()
	folderName := ""
	demo := false
	for _, opt := range opts {
		switch opt.Option {
		case 'v':
			fmt.Println("sumview " + buildInfo())
			return
		case 'D':
			demo = true
		case 'c':
			confPath = opt.Value
		case 'f':
			folderName = opt.Value
		}
	}
	if len(os.Args) != optind {
		usage("error: invalid arguments")
		return
	}

	conf, err := config.LoadConfigFromFile(confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1) //nolint:gocritic // PanicHandler does not need to run as it's not a panic
	}
	if err := conf.General.InitLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log.Infof("Starting up version %s", buildInfo())

	var backend types.Store
	if demo {
		backend = demoStore()
	} else if backend, err = worker.NewStore(&conf.Store); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if folderName == "" {
		folderName = conf.Store.Default
	}
	folder, err := commands.FindFolder(backend, folderName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var flagCache *cache.Cache
	if demo {
		flagCache = cache.Memory()
	} else {
		flagCache = cache.Open(conf.General.CachePath(), conf.General.CacheMaxAge)
	}
	defer flagCache.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := lib.NewMessageStore(backend, folder, conf).
		WithCache(flagCache).
		WithListener(statusListener{})
	if err := store.Open(ctx, folder); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	c := &commands.Context{
		Ctx:     ctx,
		Store:   store,
		Backend: backend,
		Out:     os.Stdout,
		Width:   80,
	}
	if err := run(c, backend); err != nil {
		log.Errorf("%v", err)
	}
	if n := store.Counts(); n.Pending() {
		fmt.Fprintf(os.Stderr, "not executed: %s\n", n)
	}
	if err := store.Close(context.Background()); err != nil {
		log.Errorf("%v", err)
	}
}

// run reads commands from stdin until quit, end of input or a signal.
// Changes to the current folder made by other programs are applied as they
// come.
func run(c *commands.Context, backend types.Store) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	done := make(chan struct{})
	defer close(done)
	lines := readLines(os.Stdin, done)

	var events <-chan *types.FSEvent
	w, canWatch := backend.(watchable)
	var watcher types.FSWatcher
	if canWatch {
		var err error
		watcher, err = watchers.New()
		if err != nil {
			log.Warnf("cannot watch the store: %v", err)
			canWatch = false
		} else {
			defer watcher.Close()
			events = watcher.Events()
		}
	}
	watched := c.Store.Folder()
	if canWatch {
		if err := w.Watch(watcher, watched); err != nil {
			log.Warnf("%v", err)
		}
	}

	prompt := func() {
		if interactive {
			fmt.Fprintf(c.Out, "%s> ", c.Store.Folder())
		}
	}
	prompt()
	for {
		select {
		case <-c.Ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := commands.GlobalCommands.ExecuteCommand(c, line)
			var exit commands.ErrorExit
			if errors.As(err, &exit) {
				return nil
			} else if err != nil {
				fmt.Fprintf(c.Out, "error: %v\n", err)
			}
			if canWatch && !watched.Same(c.Store.Folder()) {
				w.Unwatch(watcher, watched)
				watched = c.Store.Folder()
				if err := w.Watch(watcher, watched); err != nil {
					log.Warnf("%v", err)
				}
			}
			prompt()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			handleEvent(c, w, ev)
		}
	}
}

// readLines sends the lines of r on the returned channel, which is closed at
// end of input. The reader gives up as soon as done is closed.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer log.PanicHandler()
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func handleEvent(c *commands.Context, w watchable, ev *types.FSEvent) {
	log.Tracef("fs event %d on %s", ev.Operation, ev.Path)
	switch ev.Operation {
	case types.FSCreate:
		if err := c.Store.Load(c.Ctx); err != nil {
			log.Warnf("reload after %s: %v", ev.Path, err)
		}
	case types.FSRemove, types.FSRename:
		uid, gone := w.Vanished(c.Store.Folder(), ev.Path)
		if !gone {
			return
		}
		if err := c.Store.Invalidate([]models.UID{uid}); err != nil {
			log.Warnf("invalidate %d: %v", uid, err)
		}
	}
}

// demoStore returns an in-memory store with a few threads.
func demoStore() types.Store {
	s := memory.New()
	inbox := s.AddFolder("INBOX", models.FolderInbox)
	s.AddFolder("Archive", models.FolderNormal)
	s.AddFolder("Trash", models.FolderTrash)
	now := time.Now().Add(-48 * time.Hour)
	unread := models.Flags{Perm: models.FlagUnread}
	s.Append(inbox,
		&models.Message{Subject: "Release planning", From: "Alice",
			MessageId: "<plan@example.org>", Date: now, Size: 2048},
		&models.Message{Subject: "Re: Release planning", From: "Bob",
			MessageId: "<plan-1@example.org>", InReplyTo: "<plan@example.org>",
			Date: now.Add(time.Hour), Size: 1024, Flags: unread},
		&models.Message{Subject: "Lunch?", From: "Carol",
			MessageId: "<lunch@example.org>", Date: now.Add(2 * time.Hour), Size: 512},
		&models.Message{Subject: "Re: Release planning", From: "Alice",
			MessageId: "<plan-2@example.org>", InReplyTo: "<plan-1@example.org>",
			Date: now.Add(3 * time.Hour), Size: 900, Flags: unread},
		&models.Message{Subject: "Lunch?", From: "Carol",
			MessageId: "<lunch@example.org>", Date: now.Add(2 * time.Hour), Size: 512},
	)
	return s
}
