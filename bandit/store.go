package bandit

import (
	"fmt"
	"sync"
)

// Store holds the current belief snapshot and the known category set.
// Readers take the whole snapshot; writers install a replacement, so a
// request racing an update sees either the old or the new mapping,
// never a partially-updated one.
type Store struct {
	mu         sync.RWMutex
	params     Params
	categories []string
	known      map[string]struct{}
}

// NewStore creates a Store over an initial snapshot and the fixed
// category set.
func NewStore(params Params, categories []string) *Store {
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c] = struct{}{}
	}
	return &Store{
		params:     params,
		categories: categories,
		known:      known,
	}
}

// Current returns the installed snapshot. The snapshot is never mutated
// after installation, so callers may read it without further locking.
func (s *Store) Current() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Install atomically replaces the whole snapshot, e.g. after a batch
// Reinitialize.
func (s *Store) Install(params Params) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
}

// Categories returns the fixed category set.
func (s *Store) Categories() []string {
	return s.categories
}

// Bump is the incremental update path: it increments one (user,
// category) alpha by building a snapshot that shares every untouched
// user row with the previous one. A first-time user gets a full uniform
// row before the increment, so Bump always matches what a Reinitialize
// over the updated history would produce.
func (s *Store) Bump(userID, category string) error {
	if _, ok := s.known[category]; !ok {
		return fmt.Errorf("bandit: bump unknown category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(Params, len(s.params)+1)
	for id, beliefs := range s.params {
		next[id] = beliefs
	}

	row := make(map[string]Belief, len(s.categories))
	if prev, ok := s.params[userID]; ok {
		for c, b := range prev {
			row[c] = b
		}
	} else {
		for _, c := range s.categories {
			row[c] = Belief{Alpha: 1, Beta: 1}
		}
	}
	b := row[category]
	b.Alpha++
	row[category] = b
	next[userID] = row

	s.params = next
	return nil
}
