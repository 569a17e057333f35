// Package cache persists the session flags of message lists between runs in
// a leveldb database. Entries are keyed per folder and per uid.
package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// CachedFlags is the snapshot of one message.
type CachedFlags struct {
	Uid       models.UID
	MessageId string
	Perm      models.PermFlag
	Created   time.Time
}

type Cache struct {
	mem  map[string][]byte
	file *leveldb.DB
	now  func() time.Time
}

// Open opens (or creates) the database in dir. When that fails, the cache
// lives in memory for the session. Entries older than maxAge are dropped
// unless maxAge is zero.
func Open(dir string, maxAge time.Duration) *Cache {
	c := &Cache{now: time.Now}
	if dir == "" {
		c.mem = make(map[string][]byte)
		return c
	}
	_ = os.MkdirAll(dir, 0o700)
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		log.Errorf("failed opening cache db: %v", err)
		c.mem = make(map[string][]byte)
		return c
	}
	c.file = db
	log.Debugf("cache db opened: %s", dir)
	if maxAge > 0 {
		c.Clean(maxAge)
	}
	return c
}

// Memory returns a cache that does not outlive the process.
func Memory() *Cache {
	return &Cache{mem: make(map[string][]byte), now: time.Now}
}

func (c *Cache) Close() error {
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}

func folderPrefix(folder *models.Folder) string {
	return "flags\x00" + folder.Path + "\x00"
}

func flagsKey(folder *models.Folder, uid models.UID) string {
	return folderPrefix(folder) + strconv.FormatUint(uint64(uid), 10)
}

func marshal(entry *CachedFlags) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(entry); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte) (*CachedFlags, error) {
	entry := new(CachedFlags)
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(entry)
	return entry, err
}

// ReadCache returns the snapshot of folder ordered by uid. The messages only
// carry their uid, message-id and permanent flags.
func (c *Cache) ReadCache(ctx context.Context, folder *models.Folder) ([]*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var msgs []*models.Message
	err := c.scan(folderPrefix(folder), func(key string, value []byte) error {
		entry, err := unmarshal(value)
		if err != nil {
			return err
		}
		msgs = append(msgs, &models.Message{
			Uid:       entry.Uid,
			MessageId: entry.MessageId,
			Folder:    folder,
			Flags:     models.Flags{Perm: entry.Perm},
		})
		return nil
	})
	if err != nil {
		log.Debugf("cache format has changed, purging %s", folder)
		if e := c.purge(folderPrefix(folder)); e != nil {
			log.Errorf("cache purge: %v", e)
		}
		return nil, err
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Uid < msgs[j].Uid })
	return msgs, nil
}

// WriteCache replaces the snapshot of folder with msgs.
func (c *Cache) WriteCache(ctx context.Context, folder *models.Folder, msgs []*models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := c.now()
	values := make(map[string][]byte, len(msgs))
	for _, msg := range msgs {
		data, err := marshal(&CachedFlags{
			Uid:       msg.Uid,
			MessageId: msg.MessageId,
			Perm:      msg.Flags.Perm,
			Created:   now,
		})
		if err != nil {
			return err
		}
		values[flagsKey(folder, msg.Uid)] = data
	}
	return c.replace(folderPrefix(folder), values)
}

func (c *Cache) scan(prefix string, fn func(key string, value []byte) error) error {
	switch {
	case c.file != nil:
		iter := c.file.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		defer iter.Release()
		for iter.Next() {
			if err := fn(string(iter.Key()), iter.Value()); err != nil {
				return err
			}
		}
		return iter.Error()
	case c.mem != nil:
		for key, value := range c.mem {
			if strings.HasPrefix(key, prefix) {
				if err := fn(key, value); err != nil {
					return err
				}
			}
		}
		return nil
	}
	panic("cache with no backend")
}

// replace drops every key under prefix and stores values, atomically when
// the cache is backed by a file.
func (c *Cache) replace(prefix string, values map[string][]byte) error {
	switch {
	case c.file != nil:
		txn, err := c.file.OpenTransaction()
		if err != nil {
			return err
		}
		iter := txn.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		for iter.Next() {
			if err = txn.Delete(iter.Key(), nil); err != nil {
				break
			}
		}
		iter.Release()
		for key, value := range values {
			if err != nil {
				break
			}
			err = txn.Put([]byte(key), value, nil)
		}
		if err != nil {
			txn.Discard()
			return err
		}
		return txn.Commit()
	case c.mem != nil:
		for key := range c.mem {
			if strings.HasPrefix(key, prefix) {
				delete(c.mem, key)
			}
		}
		for key, value := range values {
			c.mem[key] = value
		}
		return nil
	}
	panic("cache with no backend")
}

func (c *Cache) purge(prefix string) error {
	return c.replace(prefix, nil)
}

func (c *Cache) delete(key string) error {
	switch {
	case c.file != nil:
		return c.file.Delete([]byte(key), nil)
	case c.mem != nil:
		delete(c.mem, key)
		return nil
	}
	panic("cache with no backend")
}

// Clean removes the entries older than maxAge and the ones that cannot be
// decoded anymore.
func (c *Cache) Clean(maxAge time.Duration) {
	start := c.now()
	var scanned, removed int
	var stale []string
	_ = c.scan("flags\x00", func(key string, value []byte) error {
		scanned++
		entry, err := unmarshal(value)
		if err != nil || entry.Created.Add(maxAge).Before(start) {
			stale = append(stale, key)
		}
		return nil
	})
	for _, key := range stale {
		if err := c.delete(key); err != nil {
			log.Errorf("cannot clean cache: %v", err)
			continue
		}
		removed++
	}
	log.Debugf("cache: removed %d/%d expired entries in %s",
		removed, scanned, time.Since(start))
}
