package commands

import (
	"errors"
	"fmt"

	"git.sr.ht/~rjarry/sumview/worker/types"
)

type Delete struct{}

func init() {
	register(Delete{})
}

func (Delete) Aliases() []string {
	return []string{"delete", "rm"}
}

func (Delete) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage(args[0])
	}
	keys, err := targets(c)
	if err != nil {
		return err
	}
	if err := c.Store.Delete(c.Ctx, keys...); err != nil {
		return err
	}
	c.Store.Marker().ClearVisualMark()
	return nil
}

type MoveCopy struct{}

func init() {
	register(MoveCopy{})
}

func (MoveCopy) Aliases() []string {
	return []string{"move", "mv", "copy", "cp"}
}

func (MoveCopy) Execute(c *Context, args []string) error {
	if len(args) != 2 {
		return usage(args[0] + " <folder>")
	}
	dest, err := FindFolder(c.Backend, args[1])
	if err != nil {
		return err
	}
	keys, err := targets(c)
	if err != nil {
		return err
	}
	switch args[0] {
	case "move", "mv":
		err = c.Store.MoveTo(c.Ctx, dest, keys...)
	default:
		err = c.Store.CopyTo(c.Ctx, dest, keys...)
	}
	if err != nil {
		return err
	}
	c.Store.Marker().ClearVisualMark()
	return nil
}

type Execute struct{}

func init() {
	register(Execute{})
}

func (Execute) Aliases() []string {
	return []string{"execute", "x"}
}

func (Execute) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage(args[0])
	}
	result, err := c.Store.Execute(c.Ctx)
	if result != nil {
		c.Printf("%d moved, %d copied, %d deleted\n",
			result.Moved, result.Copied, result.Deleted)
		if result.Skipped > 0 {
			c.Printf("%d messages skipped, store unavailable\n", result.Skipped)
		}
	}
	var partial *types.PartialCommitError
	if errors.As(err, &partial) {
		for _, failed := range partial.Errors {
			c.Printf("failed: %v\n", failed)
		}
		return fmt.Errorf("%d batches failed, their messages stay pending",
			len(partial.Errors))
	}
	return err
}
