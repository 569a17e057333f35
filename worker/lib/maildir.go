package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.sr.ht/~rjarry/sumview/models"
	"github.com/emersion/go-maildir"
)

type MaildirStore struct {
	root      string
	maildirpp bool // whether to use Maildir++ directory layout
}

func NewMaildirStore(root string, maildirpp bool) (*MaildirStore, error) {
	s, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !s.IsDir() {
		return nil, fmt.Errorf("Given maildir '%s' not a directory", root)
	}
	return &MaildirStore{
		root: root, maildirpp: maildirpp,
	}, nil
}

func (s *MaildirStore) Root() string {
	return s.root
}

// Available reports whether the root directory can still be reached.
func (s *MaildirStore) Available() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

func (s *MaildirStore) FolderMap() (map[string]maildir.Dir, error) {
	folders := make(map[string]maildir.Dir)
	if s.maildirpp {
		// In Maildir++ layout, INBOX is the root folder
		folders["INBOX"] = maildir.Dir(s.root)
	}
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("Invalid path '%s': error: %w", path, err)
		}
		if !info.IsDir() {
			return nil
		}

		n := info.Name()
		if n == "new" || n == "tmp" || n == "cur" {
			return filepath.SkipDir
		}

		dirPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if dirPath == "." {
			return nil
		}

		// Drop dirs that lack {new,tmp,cur} subdirs
		for _, sub := range []string{"new", "tmp", "cur"} {
			if _, err := os.Stat(filepath.Join(path, sub)); os.IsNotExist(err) {
				return nil
			}
		}

		if s.maildirpp {
			// Maildir++ mailboxes are dot prefixed siblings, subfolders
			// are separated by dots.
			if !strings.HasPrefix(dirPath, ".") {
				return filepath.SkipDir
			}
			dirPath = strings.TrimPrefix(dirPath, ".")
			dirPath = strings.ReplaceAll(dirPath, ".", "/")
			folders[dirPath] = maildir.Dir(path)
			return filepath.SkipDir
		}

		folders[filepath.ToSlash(dirPath)] = maildir.Dir(path)
		return nil
	})
	return folders, err
}

// Dir returns the maildir.Dir of folder name inside the store
func (s *MaildirStore) Dir(name string) maildir.Dir {
	if s.maildirpp {
		if name == "INBOX" {
			return maildir.Dir(s.root)
		}
		return maildir.Dir(filepath.Join(s.root, "."+strings.ReplaceAll(name, "/", ".")))
	}
	return maildir.Dir(filepath.Join(s.root, filepath.FromSlash(name)))
}

// uidReg matches filename encoded UIDs in maildirs synched with mbsync or
// OfflineIMAP
var uidReg = regexp.MustCompile(`,U=\d+`)

func StripUIDFromMessageFilename(basename string) string {
	return uidReg.ReplaceAllString(basename, "")
}

// KeyFromFilename returns the maildir key of a message file.
func KeyFromFilename(filename string) string {
	base := filepath.Base(filename)
	if key, _, found := strings.Cut(base, ":"); found {
		return key
	}
	return base
}

// FromMaildirFlags translates the maildir flags the store persists. The
// flagged and trashed maildir flags are left out: marks and deletes are
// session intents.
func FromMaildirFlags(maildirFlags []maildir.Flag) models.PermFlag {
	perm := models.FlagUnread
	for _, flag := range maildirFlags {
		switch flag {
		case maildir.FlagSeen:
			perm &^= models.FlagUnread
		case maildir.FlagReplied:
			perm |= models.FlagReplied
		case maildir.FlagPassed:
			perm |= models.FlagForwarded
		}
	}
	return perm
}
