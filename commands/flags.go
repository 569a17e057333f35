package commands

import (
	"errors"

	"git.sr.ht/~sircmpwn/getopt"
)

type Mark struct{}

func init() {
	register(Mark{})
}

func (Mark) Aliases() []string {
	return []string{"mark", "unmark"}
}

// Marking or unmarking a message cancels its pending delete, move or copy.
func (Mark) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage(args[0])
	}
	keys, err := targets(c)
	if err != nil {
		return err
	}
	if args[0] == "mark" {
		c.Store.Mark(keys...)
	} else {
		c.Store.Unmark(keys...)
	}
	return nil
}

type Read struct{}

func init() {
	register(Read{})
}

func (Read) Aliases() []string {
	return []string{"read", "unread"}
}

func (Read) Execute(c *Context, args []string) error {
	opts, optind, err := getopt.Getopts(args, "a")
	if err != nil {
		return err
	}
	all := false
	for _, opt := range opts {
		if opt.Option == 'a' {
			all = true
		}
	}
	if len(args) != optind {
		return usage(args[0] + " [-a]")
	}
	if all {
		if args[0] != "read" {
			return errors.New("-a only applies to read")
		}
		n := c.Store.MarkAllRead()
		c.Printf("%d messages marked read\n", n)
		return nil
	}
	keys, err := targets(c)
	if err != nil {
		return err
	}
	if args[0] == "read" {
		c.Store.MarkRead(keys...)
	} else {
		c.Store.MarkUnread(keys...)
	}
	return nil
}

type Label struct{}

func init() {
	register(Label{})
}

func (Label) Aliases() []string {
	return []string{"label"}
}

func (Label) Execute(c *Context, args []string) error {
	if len(args) != 2 {
		return usage("label <0-7>")
	}
	label, err := parseLabel(args[1])
	if err != nil {
		return err
	}
	keys, err := targets(c)
	if err != nil {
		return err
	}
	c.Store.SetColorLabel(label, keys...)
	return nil
}

// Tag picks the rows the next command applies to. It does not change any
// message flag.
type Tag struct{}

func init() {
	register(Tag{})
}

func (Tag) Aliases() []string {
	return []string{"tag", "untag"}
}

func (Tag) Execute(c *Context, args []string) error {
	opts, optind, err := getopt.Getopts(args, "atvc")
	if err != nil {
		return err
	}
	var all, toggle, visual, clear bool
	for _, opt := range opts {
		switch opt.Option {
		case 'a':
			all = true
		case 't':
			toggle = true
		case 'v':
			visual = true
		case 'c':
			clear = true
		}
	}
	if len(args) != optind {
		return usage(args[0] + " [-a|-t|-v|-c]")
	}
	if all && visual {
		return errors.New("-a and -v are mutually exclusive")
	}
	marker := c.Store.Marker()
	if clear {
		marker.ClearVisualMark()
		return nil
	}
	if visual {
		marker.ToggleVisualMark(args[0] == "tag")
		return nil
	}

	modFunc := marker.Mark
	switch {
	case toggle:
		modFunc = marker.ToggleMark
	case args[0] == "untag":
		modFunc = marker.Unmark
	}
	if all {
		for _, uid := range c.Store.Uids() {
			modFunc(uid)
		}
		return nil
	}
	key, err := selected(c)
	if err != nil {
		return err
	}
	modFunc(key.Uid)
	return nil
}
