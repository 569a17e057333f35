package config

import (
	"fmt"
	"net/url"

	"git.sr.ht/~rjarry/sumview/lib/xdg"
	"github.com/go-ini/ini"
)

type StoreConfig struct {
	Source    *url.URL `ini:"source" default:"maildir://~/Maildir" parse:"ParseSource"`
	Trash     string   `ini:"trash" default:"Trash"`
	FolderMap string   `ini:"folder-map"`
	// folder opened at startup
	Default string `ini:"default" default:"INBOX"`
}

func (s *StoreConfig) ParseSource(sec *ini.Section, key *ini.Key) (*url.URL, error) {
	u, err := url.Parse(key.String())
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("source %q has no scheme", key.String())
	}
	return u, nil
}

// Path returns the local path of the source, home expanded.
func (s *StoreConfig) Path() string {
	return xdg.ExpandHome(s.Source.Host + s.Source.Path)
}

func parseStore(file *ini.File) (StoreConfig, error) {
	var store StoreConfig
	if err := MapToStruct(file.Section("store"), &store, true); err != nil {
		return store, err
	}
	if store.FolderMap != "" {
		store.FolderMap = xdg.ExpandHome(store.FolderMap)
	}
	return store, nil
}
