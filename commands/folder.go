package commands

import (
	"strings"

	"github.com/dustin/go-humanize"

	"git.sr.ht/~rjarry/sumview/lib/log"
)

type ChangeFolder struct{}

func init() {
	register(ChangeFolder{})
}

func (ChangeFolder) Aliases() []string {
	return []string{"cd", "cf"}
}

// Leaving a folder discards its pending moves and copies. Deletes and marks
// are kept in the flag cache.
func (ChangeFolder) Execute(c *Context, args []string) error {
	if len(args) != 2 {
		return usage(args[0] + " <folder>")
	}
	folder, err := FindFolder(c.Backend, args[1])
	if err != nil {
		return err
	}
	if n := c.Store.Counts(); n.Moved+n.Copied > 0 && !folder.Same(c.Store.Folder()) {
		c.Printf("%d moves and %d copies discarded\n", n.Moved, n.Copied)
	}
	if err := c.Store.Open(c.Ctx, folder); err != nil {
		return err
	}
	log.Debugf("changed folder to %s", folder)
	return nil
}

type Reload struct{}

func init() {
	register(Reload{})
}

func (Reload) Aliases() []string {
	return []string{"reload"}
}

func (Reload) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("reload")
	}
	return c.Store.Load(c.Ctx)
}

type Folders struct{}

func init() {
	register(Folders{})
}

func (Folders) Aliases() []string {
	return []string{"folders"}
}

func (Folders) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("folders")
	}
	current := c.Store.Folder()
	for _, f := range c.Backend.Folders() {
		cursor := "  "
		if f.Same(current) {
			cursor = "> "
		}
		c.Printf("%s%s %s\n", cursor, column(f.Path, 30), f.Kind)
	}
	return nil
}

type Status struct{}

func init() {
	register(Status{})
}

func (Status) Aliases() []string {
	return []string{"status"}
}

func (Status) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("status")
	}
	pending, counters := c.Store.Status()
	c.Printf("%s: %s\n%s\n", c.Store.Folder(), counters, pending)
	if msg := c.Store.SelectedMessage(); msg != nil {
		c.Printf("selected: %s (%s)\n", msg.Subject, humanize.Time(msg.Date))
	}
	if c.Store.IsLocked() {
		c.Printf("locked\n")
	}
	return nil
}

type Help struct{}

func init() {
	register(Help{})
}

func (Help) Aliases() []string {
	return []string{"help"}
}

func (Help) Execute(c *Context, args []string) error {
	c.Printf("%s\n", strings.Join(GlobalCommands.Names(), " "))
	return nil
}

type Quit struct{}

func init() {
	register(Quit{})
}

func (Quit) Aliases() []string {
	return []string{"quit", "q"}
}

func (Quit) Execute(c *Context, args []string) error {
	return ErrorExit(0)
}
