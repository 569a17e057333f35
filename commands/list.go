package commands

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"git.sr.ht/~rjarry/sumview/models"
)

type List struct{}

func init() {
	register(List{})
}

func (List) Aliases() []string {
	return []string{"list", "ls"}
}

func (List) Execute(c *Context, args []string) error {
	if len(args) != 1 {
		return usage("list")
	}
	uids := c.Store.Uids()
	if len(uids) == 0 {
		c.Printf("(empty)\n")
		return nil
	}
	sel, _ := c.Store.Selected()
	disp, hasDisp := c.Store.Displayed()
	width := c.Width
	if width <= 0 {
		width = 80
	}
	// cursor, row number, flags, from, date, size and separators
	subjectWidth := width - 2 - 5 - 5 - 21 - 11 - 9
	if subjectWidth < 10 {
		subjectWidth = 10
	}
	for i, uid := range uids {
		key := c.Store.Key(uid)
		msg := c.Store.Message(key)
		if msg == nil {
			continue
		}
		cursor := "  "
		switch {
		case key == sel && hasDisp && key == disp:
			cursor = "=>"
		case key == sel:
			cursor = "> "
		}
		if c.Store.Marker().IsMarked(uid) {
			cursor = cursor[:1] + "+"
		}
		subject := strings.Repeat("  ", c.Store.Depth(key)) + msg.Subject
		if c.Store.Folded(key) {
			subject = "[+] " + subject
		}
		c.Printf("%s%4d %s %s %s %s %8s\n", cursor, i+1, msg.Flags,
			column(msg.From, 20), column(subject, subjectWidth),
			formatDate(msg), humanize.Bytes(uint64(msg.Size)))
	}
	return nil
}

func formatDate(msg *models.Message) string {
	if msg.Date.IsZero() {
		return runewidth.FillRight("", 10)
	}
	return msg.Date.Local().Format("2006-01-02")
}
