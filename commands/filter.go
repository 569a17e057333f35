package commands

import (
	"errors"
	"regexp"

	"git.sr.ht/~sircmpwn/getopt"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

type Filter struct{}

func init() {
	register(Filter{})
}

func (Filter) Aliases() []string {
	return []string{"filter"}
}

const filterUsage = "filter [-t] [-f from-re] [-s subject-re] " +
	"[-m folder|-c folder|-d] [-M] [-l label] [-r]"

// Filter applies one rule to the tagged or selected rows (-t) or to the
// whole folder. A message matches when every given pattern matches.
func (Filter) Execute(c *Context, args []string) error {
	opts, optind, err := getopt.Getopts(args, "tf:s:m:c:dMl:r")
	if err != nil {
		return err
	}
	if len(args) != optind {
		return usage(filterUsage)
	}
	var (
		selectedOnly bool
		from, subj   *regexp.Regexp
		verdict      types.Verdict
	)
	for _, opt := range opts {
		switch opt.Option {
		case 't':
			selectedOnly = true
		case 'f':
			if from, err = regexp.Compile("(?i)" + opt.Value); err != nil {
				return err
			}
		case 's':
			if subj, err = regexp.Compile("(?i)" + opt.Value); err != nil {
				return err
			}
		case 'm', 'c':
			if verdict.Dest != nil {
				return errors.New("-m and -c are mutually exclusive")
			}
			if verdict.Dest, err = FindFolder(c.Backend, opt.Value); err != nil {
				return err
			}
			if opt.Option == 'm' {
				verdict.Actions |= types.ActionMove
			} else {
				verdict.Actions |= types.ActionCopy
			}
		case 'd':
			verdict.Actions |= types.ActionDelete
		case 'M':
			verdict.Actions |= types.ActionMark
		case 'l':
			if verdict.Label, err = parseLabel(opt.Value); err != nil {
				return err
			}
			verdict.Actions |= types.ActionLabel
		case 'r':
			verdict.Actions |= types.ActionMarkRead
		}
	}
	if verdict.Actions == 0 {
		return usage(filterUsage)
	}
	rule := types.FilterFunc(func(msg *models.Message) types.Verdict {
		if from != nil && !from.MatchString(msg.From) {
			return types.Verdict{}
		}
		if subj != nil && !subj.MatchString(msg.Subject) {
			return types.Verdict{}
		}
		return verdict
	})
	n, err := c.Store.Filter(c.Ctx, rule, selectedOnly)
	if n > 0 {
		c.Printf("filter matched %d messages\n", n)
	}
	return err
}
