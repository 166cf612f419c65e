// SPDX-License-Identifier: Apache-2.0

// Package mockstore is an in-memory Secret Service. It honours the same
// Store/Lookup/Remove contract and returns the same errors as the
// secretservice client, so code written against that client can be tested
// without a session bus.
package mockstore

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/akihiro/keyring/internal/secretservice"
)

// Name and label of the collection every new Store starts with.
const (
	LoginCollection = "login"
	LoginLabel      = "Login"
	DefaultAlias    = "default"
)

type item struct {
	label      string
	attributes map[string]string
	secret     []byte
	created    time.Time
}

type collection struct {
	label  string
	locked bool
	items  map[string]*item // keyed by id
}

// Store provides thread-safe access to the in-memory collections.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	aliases     map[string]string
	failure     error
	sessions    int
}

// New returns a Store holding an empty unlocked "login" collection that the
// "default" alias points at.
func New() *Store {
	return &Store{
		collections: map[string]*collection{
			LoginCollection: {label: LoginLabel, items: make(map[string]*item)},
		},
		aliases: map[string]string{DefaultAlias: LoginCollection},
	}
}

// Connect opens a session, mirroring secretservice.Connect.
func (s *Store) Connect() (*Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	s.sessions++
	return s, nil
}

// Close closes a session opened by Connect.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions > 0 {
		s.sessions--
	}
	return nil
}

// OpenSessions returns the number of sessions not yet closed.
func (s *Store) OpenSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions
}

// Fail makes every following call return err; nil restores normal operation.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// --- Collections ---

// CreateCollection adds an empty collection. Returns error if it already exists.
func (s *Store) CreateCollection(name, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("collection %q already exists", name)
	}
	s.collections[name] = &collection{label: label, items: make(map[string]*item)}
	return nil
}

// SetAlias maps an alias name to a collection name.
// Pass collection="" to remove the alias.
func (s *Store) SetAlias(name, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection == "" {
		delete(s.aliases, name)
		return nil
	}
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q not found", collection)
	}
	s.aliases[name] = collection
	return nil
}

// SetLocked locks or unlocks a collection. Operations on a locked
// collection fail as if the user dismissed the unlock prompt.
func (s *Store) SetLocked(name string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %q not found", name)
	}
	c.locked = locked
	return nil
}

// Len returns the number of items in the named collection.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.items)
	}
	return 0
}

// --- Items ---

// Store creates or replaces the item whose attributes equal attrs.
func (s *Store) Store(collection, label string, attrs map[string]string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c, err := s.unlocked(collection)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, it := range c.items {
		if maps.Equal(it.attributes, attrs) {
			it.label = label
			it.secret = slices.Clone(secret)
			return nil
		}
	}
	id := uuid.NewString()
	c.items[id] = &item{
		label:      label,
		attributes: maps.Clone(attrs),
		secret:     slices.Clone(secret),
		created:    now,
	}
	return nil
}

// Lookup returns a copy of the first item whose attributes are a superset
// of attrs.
func (s *Store) Lookup(collection string, attrs map[string]string) (*secretservice.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, c, err := s.unlocked(collection)
	if err != nil {
		return nil, err
	}
	id, it := first(c, attrs)
	if it == nil {
		return nil, secretservice.ErrNoSuchItem
	}
	return &secretservice.Item{
		Path:       secretservice.ItemPath(name, id),
		Label:      it.label,
		Attributes: maps.Clone(it.attributes),
		Secret:     slices.Clone(it.secret),
	}, nil
}

// Remove deletes the first item whose attributes are a superset of attrs.
func (s *Store) Remove(collection string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c, err := s.unlocked(collection)
	if err != nil {
		return err
	}
	id, it := first(c, attrs)
	if it == nil {
		return secretservice.ErrNoSuchItem
	}
	delete(c.items, id)
	return nil
}

// unlocked resolves a collection by alias, name, then label, and fails if
// it is locked. Caller must hold s.mu.
func (s *Store) unlocked(ref string) (string, *collection, error) {
	if s.failure != nil {
		return "", nil, s.failure
	}
	name, c := s.resolve(ref)
	if c == nil {
		return "", nil, fmt.Errorf("%w: %q", secretservice.ErrNoSuchCollection, ref)
	}
	if c.locked {
		return "", nil, dbus.Error{
			Name: secretservice.ErrNameIsLocked,
			Body: []interface{}{fmt.Sprintf("collection %q is locked", name)},
		}
	}
	return name, c, nil
}

func (s *Store) resolve(ref string) (string, *collection) {
	if target, ok := s.aliases[ref]; ok {
		if c, ok := s.collections[target]; ok {
			return target, c
		}
	}
	if c, ok := s.collections[ref]; ok {
		return ref, c
	}
	for _, name := range slices.Sorted(maps.Keys(s.collections)) {
		if c := s.collections[name]; c.label == ref {
			return name, c
		}
	}
	return "", nil
}

// first returns the oldest matching item so lookups are deterministic.
func first(c *collection, attrs map[string]string) (string, *item) {
	var (
		id  string
		hit *item
	)
	for k, it := range c.items {
		if !matchesAll(it.attributes, attrs) {
			continue
		}
		if hit == nil || it.created.Before(hit.created) || (it.created.Equal(hit.created) && k < id) {
			id, hit = k, it
		}
	}
	return id, hit
}

// matchesAll returns true if itemAttrs contains all key/value pairs in want.
func matchesAll(itemAttrs, want map[string]string) bool {
	for k, v := range want {
		if itemAttrs[k] != v {
			return false
		}
	}
	return true
}
