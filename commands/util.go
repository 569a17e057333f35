package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-runewidth"

	"git.sr.ht/~rjarry/sumview/lib"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// FindFolder resolves name to a folder of backend. An unknown name falls
// back to the closest fuzzy match.
func FindFolder(backend types.Store, name string) (*models.Folder, error) {
	if f, err := backend.Folder(name); err == nil {
		return f, nil
	}
	var paths []string
	for _, f := range backend.Folders() {
		paths = append(paths, f.Path)
	}
	ranks := fuzzy.RankFindFold(name, paths)
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%s: %w", name, types.ErrNoFolder)
	}
	sort.Sort(ranks)
	return backend.Folder(ranks[0].Target)
}

// column pads or truncates s to width terminal cells.
func column(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func targets(c *Context) ([]lib.NodeKey, error) {
	keys := c.Store.Targets()
	if len(keys) == 0 {
		return nil, errNoSelection
	}
	return keys, nil
}

func selected(c *Context) (lib.NodeKey, error) {
	key, ok := c.Store.Selected()
	if !ok {
		return key, errNoSelection
	}
	return key, nil
}

// parseLabel accepts a color label between 0 and models.MaxColorLabel.
func parseLabel(arg string) (int, error) {
	label, err := strconv.Atoi(arg)
	if err != nil || label < 0 || label > models.MaxColorLabel {
		return 0, fmt.Errorf("invalid label %q, expected 0 to %d",
			arg, models.MaxColorLabel)
	}
	return label, nil
}

func usage(text string) error {
	return errors.New("Usage: " + text)
}
