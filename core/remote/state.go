package remote

import (
	"sync"

	"github.com/e-dream-ai/dreamstream/model"
)

// Snapshot is a read-only view of the playback state.
type Snapshot struct {
	CurrentDream *model.Dream
	Loading      bool
}

// Subscriber receives a snapshot after every state change.
type Subscriber func(Snapshot)

// Store holds the playback state shared across the client. It has exactly one
// writer, the Synchronizer; everything else subscribes read-only. The zero
// state is empty and not loading.
type Store struct {
	mu      sync.RWMutex
	current *model.Dream
	loading bool
	subs    map[int]Subscriber
	nextSub int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]Subscriber)}
}

// SetCurrentDream replaces the current dream. nil clears it.
func (s *Store) SetCurrentDream(dream *model.Dream) {
	s.mu.Lock()
	s.current = dream
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// Reset clears both fields to their initial state. Safe to call at any time,
// e.g. on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = nil
	s.loading = false
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers a subscriber and returns a cancel function.
func (s *Store) Subscribe(fn Subscriber) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{CurrentDream: s.current, Loading: s.loading}
}

func (s *Store) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []Subscriber, snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
