package state

import (
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]*entry
	watchers []*watcher
	revision uint64
	closed   atomic.Bool
}

type entry struct {
	value    any
	revision uint64
	modified time.Time
}

type watcher struct {
	pattern string
	ch      chan *KeyValue
	closed  atomic.Bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*entry),
	}
}

// Insert stores value under key and returns the previous value.
func (s *MemoryStore) Insert(key string, value any) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrClosed
	}

	var prev any
	if e, ok := s.data[key]; ok {
		prev = e.value
	}
	s.put(key, value)
	return prev, nil
}

// Load returns the raw value for key.
func (s *MemoryStore) Load(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return e.value, nil
}

// Revision returns the store-wide revision of the last write to key.
func (s *MemoryStore) Revision(key string) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	if s.closed.Load() {
		return 0, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return 0, ErrNotFound
	}
	return e.revision, nil
}

// Modify replaces the value for key with fn's result under the write lock.
func (s *MemoryStore) Modify(key string, fn func(current any) (any, error)) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ErrClosed
	}

	e, ok := s.data[key]
	if !ok {
		return ErrNotFound
	}
	next, err := fn(e.value)
	if err != nil {
		return err
	}
	s.put(key, next)
	return nil
}

// put writes an entry. Must be called with lock held.
func (s *MemoryStore) put(key string, value any) {
	s.revision++
	now := time.Now()
	s.data[key] = &entry{
		value:    value,
		revision: s.revision,
		modified: now,
	}
	s.notifyWatchers(key, value, OpPut, now)
}

// Delete removes a key.
func (s *MemoryStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.revision++
		s.notifyWatchers(key, nil, OpDelete, time.Now())
	}
	return nil
}

// Keys returns all keys matching a pattern.
func (s *MemoryStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.data {
		if MatchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Watch streams changes to keys matching a pattern.
func (s *MemoryStore) Watch(pattern string) (<-chan *KeyValue, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	ch := make(chan *KeyValue, 64)
	w := &watcher{
		pattern: pattern,
		ch:      ch,
	}

	s.mu.Lock()
	if s.data == nil {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	return ch, nil
}

// notifyWatchers sends notifications to matching watchers.
// Must be called with lock held.
func (s *MemoryStore) notifyWatchers(key string, value any, op Operation, at time.Time) {
	kv := &KeyValue{
		Key:       key,
		Value:     value,
		Revision:  s.revision,
		Operation: op,
		Modified:  at,
	}

	for _, w := range s.watchers {
		if w.closed.Load() {
			continue
		}
		if MatchPattern(w.pattern, key) {
			select {
			case w.ch <- kv:
			default:
				// Channel full, drop notification
			}
		}
	}
}

// Close shuts down the store.
func (s *MemoryStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.watchers {
		if !w.closed.Swap(true) {
			close(w.ch)
		}
	}
	s.watchers = nil
	s.data = nil

	return nil
}
