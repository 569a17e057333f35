package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"git.sr.ht/~rjarry/sumview/lib"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// Context holds what commands act on.
type Context struct {
	Ctx     context.Context
	Store   *lib.MessageStore
	Backend types.Store
	Out     io.Writer
	// terminal columns available to the listing
	Width int
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

type Command interface {
	Aliases() []string
	Execute(c *Context, args []string) error
}

type Commands map[string]Command

func NewCommands() *Commands {
	cmds := Commands(make(map[string]Command))
	return &cmds
}

func (cmds *Commands) dict() map[string]Command {
	return map[string]Command(*cmds)
}

func (cmds *Commands) Names() []string {
	names := make([]string, 0, len(cmds.dict()))
	for k := range cmds.dict() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (cmds *Commands) ByName(name string) Command {
	if cmd, ok := cmds.dict()[name]; ok {
		return cmd
	}
	return nil
}

func (cmds *Commands) Register(cmd Command) {
	for _, alias := range cmd.Aliases() {
		cmds.dict()[alias] = cmd
	}
}

type NoSuchCommand struct {
	Name        string
	Suggestions []string
}

func (err NoSuchCommand) Error() string {
	msg := "Unknown command " + err.Name
	if len(err.Suggestions) > 0 {
		msg += ", did you mean " + strings.Join(err.Suggestions, " or ") + "?"
	}
	return msg
}

// ErrorExit is returned by the quit command.
type ErrorExit int

func (err ErrorExit) Error() string {
	return "exit"
}

var GlobalCommands = NewCommands()

func register(cmd Command) {
	GlobalCommands.Register(cmd)
}

// ExecuteCommand splits cmdline shell style and runs the command it names.
// An empty line does nothing.
func (cmds *Commands) ExecuteCommand(c *Context, cmdline string) error {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd := cmds.ByName(args[0])
	if cmd == nil {
		return cmds.unknown(args[0])
	}
	log.Tracef("executing command %v", args)
	return cmd.Execute(c, args)
}

func (cmds *Commands) unknown(name string) error {
	ranks := fuzzy.RankFindFold(name, cmds.Names())
	sort.Sort(ranks)
	err := NoSuchCommand{Name: name}
	for i := 0; i < len(ranks) && i < 2; i++ {
		err.Suggestions = append(err.Suggestions, ranks[i].Target)
	}
	return err
}

var errNoSelection = errors.New("No message selected")
