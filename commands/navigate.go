package commands

import (
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"

	"git.sr.ht/~rjarry/sumview/lib"
)

type NextPrev struct{}

func init() {
	register(NextPrev{})
}

func (NextPrev) Aliases() []string {
	return []string{"next", "prev"}
}

// next and prev either step by a row count or jump to the closest row
// matching one of the predicate options.
func (NextPrev) Execute(c *Context, args []string) error {
	opts, optind, err := getopt.Getopts(args, "unmld")
	if err != nil {
		return err
	}
	var pred lib.Predicate
	for _, opt := range opts {
		switch opt.Option {
		case 'u':
			pred = lib.IsUnread
		case 'n':
			pred = lib.IsNew
		case 'm':
			pred = lib.IsMarked
		case 'l':
			pred = lib.IsLabeled
		case 'd':
			pred = lib.IsDeleted
		}
	}
	forward := args[0] == "next"
	if pred != nil {
		if len(args) != optind {
			return usage(args[0] + " [-u|-n|-m|-l|-d] [count]")
		}
		var ok bool
		if forward {
			ok = c.Store.SelectNext(pred)
		} else {
			ok = c.Store.SelectPrev(pred)
		}
		if !ok {
			c.Printf("No matching message\n")
		}
		return nil
	}

	n := 1
	switch len(args) - optind {
	case 0:
	case 1:
		n, err = strconv.Atoi(args[optind])
		if err != nil || n < 0 {
			return usage(args[0] + " [-u|-n|-m|-l|-d] [count]")
		}
	default:
		return usage(args[0] + " [-u|-n|-m|-l|-d] [count]")
	}
	if !forward {
		n = -n
	}
	c.Store.Step(n)
	return nil
}

type Select struct{}

func init() {
	register(Select{})
}

func (Select) Aliases() []string {
	return []string{"select"}
}

func (Select) Execute(c *Context, args []string) error {
	if len(args) != 2 {
		return usage("select <row>")
	}
	row, err := strconv.Atoi(args[1])
	uids := c.Store.Uids()
	if err != nil || row < 1 || row > len(uids) {
		return usage("select <row>")
	}
	c.Store.SelectByUid(uids[row-1])
	return nil
}

type View struct{}

func init() {
	register(View{})
}

func (View) Aliases() []string {
	return []string{"view"}
}

func (View) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("view")
	}
	key, err := selected(c)
	if err != nil {
		return err
	}
	c.Store.Display(key)
	msg := c.Store.DisplayedMessage()
	c.Printf("From:    %s\nTo:      %s\nSubject: %s\nDate:    %s\n",
		msg.From, msg.To, msg.Subject, msg.Date.Local().Format("Mon, 02 Jan 2006 15:04"))
	if msg.MessageId != "" {
		c.Printf("Message-Id: %s\n", msg.MessageId)
	}
	return nil
}

type Close struct{}

func init() {
	register(Close{})
}

func (Close) Aliases() []string {
	return []string{"close"}
}

func (Close) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("close")
	}
	c.Store.CloseDisplayed()
	return nil
}

type Fold struct{}

func init() {
	register(Fold{})
}

func (Fold) Aliases() []string {
	return []string{"fold", "unfold"}
}

func (Fold) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage(args[0])
	}
	key, err := selected(c)
	if err != nil {
		return err
	}
	if c.Store.Folded(key) == (args[0] == "fold") {
		return nil
	}
	if !c.Store.ToggleFold(key) {
		c.Printf("No thread to %s\n", args[0])
	}
	return nil
}
