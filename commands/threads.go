package commands

import (
	libsort "git.sr.ht/~rjarry/sumview/lib/sort"
)

type Threads struct{}

func init() {
	register(Threads{})
}

func (Threads) Aliases() []string {
	return []string{"thread", "unthread", "toggle-threads"}
}

func (Threads) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage(args[0])
	}
	switch args[0] {
	case "thread":
		return c.Store.Thread()
	case "unthread":
		return c.Store.Unthread()
	}
	if c.Store.Threaded() {
		return c.Store.Unthread()
	}
	return c.Store.Thread()
}

type Sort struct{}

func init() {
	register(Sort{})
}

func (Sort) Aliases() []string {
	return []string{"sort"}
}

// Without arguments the store order is restored.
func (Sort) Execute(c *Context, args []string) error {
	criteria, err := libsort.GetSortCriteria(args[1:])
	if err != nil {
		return err
	}
	return c.Store.Sort(criteria)
}

type Attract struct{}

func init() {
	register(Attract{})
}

func (Attract) Aliases() []string {
	return []string{"attract"}
}

func (Attract) Execute(c *Context, args []string) error {
	if len(args) != 2 {
		return usage("attract on|off")
	}
	switch args[1] {
	case "on":
		return c.Store.SetAttract(true)
	case "off":
		return c.Store.SetAttract(false)
	}
	return usage("attract on|off")
}

type Dedup struct{}

func init() {
	register(Dedup{})
}

func (Dedup) Aliases() []string {
	return []string{"dedup"}
}

func (Dedup) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("dedup")
	}
	n, err := c.Store.DeleteDuplicated(c.Ctx)
	if err != nil {
		return err
	}
	c.Printf("%d duplicates marked for deletion\n", n)
	return nil
}
