// Package uidstore maps the string keys of a store backend to the UIDs a
// message list works with. A key keeps its UID for the life of the Store.
package uidstore

import (
	"sync"

	"git.sr.ht/~rjarry/sumview/models"
)

// Store holds a mapping between backend keys and UIDs. UIDs are never
// reused, even after RemoveUID.
type Store struct {
	keyByUID map[models.UID]string
	uidByKey map[string]models.UID
	next     models.UID
	m        sync.Mutex
}

func NewStore() *Store {
	return &Store{
		keyByUID: make(map[models.UID]string),
		uidByKey: make(map[string]models.UID),
		next:     1,
	}
}

// GetOrInsert returns the UID of key, allocating one if key is new.
func (s *Store) GetOrInsert(key string) models.UID {
	s.m.Lock()
	defer s.m.Unlock()
	if uid, ok := s.uidByKey[key]; ok {
		return uid
	}
	uid := s.next
	s.next++
	s.keyByUID[uid] = key
	s.uidByKey[key] = uid
	return uid
}

func (s *Store) GetKey(uid models.UID) (string, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	key, ok := s.keyByUID[uid]
	return key, ok
}

func (s *Store) GetUID(key string) (models.UID, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	uid, ok := s.uidByKey[key]
	return uid, ok
}

func (s *Store) RemoveUID(uid models.UID) {
	s.m.Lock()
	defer s.m.Unlock()
	if key, ok := s.keyByUID[uid]; ok {
		delete(s.uidByKey, key)
	}
	delete(s.keyByUID, uid)
}
