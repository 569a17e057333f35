package lib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"git.sr.ht/~rjarry/sumview/models"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// RFC 1123Z regexp
var dateRe = regexp.MustCompile(`(((Mon|Tue|Wed|Thu|Fri|Sat|Sun))[,]?\s[0-9]{1,2})\s` +
	`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s` +
	`([0-9]{4})\s([0-9]{2}):([0-9]{2})(:([0-9]{2}))?\s([\+|\-][0-9]{4})\s?`)

// ReadHeader parses the header block of a message.
func ReadHeader(r io.Reader) (*mail.Header, error) {
	h, err := textproto.ReadHeader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	return &mail.Header{Header: message.Header{Header: h}}, nil
}

// FillSummary copies the fields of h that a message list shows into msg.
// Message ids keep their angle brackets. Fields that cannot be decoded are
// kept raw.
func FillSummary(msg *models.Message, h *mail.Header) error {
	date, err := parseDate(h)
	if err != nil {
		return fmt.Errorf("could not parse date header: %w", err)
	}
	msg.Date = date
	if msg.Subject, err = h.Subject(); err != nil {
		msg.Subject = h.Get("subject")
	}
	msg.From = parseAddressList(h, "from")
	msg.To = parseAddressList(h, "to")

	if id, err := h.MessageID(); err == nil && id != "" {
		msg.MessageId = "<" + id + ">"
	}
	if ids, err := h.MsgIDList("in-reply-to"); err == nil && len(ids) > 0 {
		msg.InReplyTo = "<" + ids[0] + ">"
	}
	msg.References = nil
	if ids, err := h.MsgIDList("references"); err == nil {
		for _, id := range ids {
			msg.References = append(msg.References, "<"+id+">")
		}
	}
	if ct, _, err := h.ContentType(); err == nil && strings.HasPrefix(ct, "multipart/") {
		msg.Flags.Set(models.FlagMime)
	}
	return nil
}

// parseDate extends the built-in date parser with additional layouts which are
// non-conforming but appear in the wild.
func parseDate(h *mail.Header) (time.Time, error) {
	t, parseErr := h.Date()
	if parseErr == nil {
		return t, nil
	}
	text, err := h.Text("date")
	if err != nil {
		return time.Time{}, errors.New("no date header")
	}
	// sometimes, no error occurs but the date is empty. In this case, guess time from received header field
	if text == "" {
		guess, err := h.Text("received")
		if err != nil {
			return time.Time{}, errors.New("no received header")
		}
		t, _ := time.Parse(time.RFC1123Z, dateRe.FindString(guess))
		return t, nil
	}
	layouts := []string{
		// X-Mailer: EarthLink Zoo Mail 1.0
		"Mon, _2 Jan 2006 15:04:05 -0700 (GMT-07:00)",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", text)
}

// parseAddressList renders the first address of key, the display name when
// there is one.
func parseAddressList(h *mail.Header, key string) string {
	addrs, err := h.AddressList(key)
	if err != nil {
		if text, err := h.Text(key); err == nil {
			return text
		}
		return h.Get(key)
	}
	if len(addrs) == 0 {
		return ""
	}
	if addrs[0].Name != "" {
		return addrs[0].Name
	}
	return addrs[0].Address
}
