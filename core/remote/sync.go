package remote

import (
	"context"
	"sync/atomic"

	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"
)

// DreamFetcher resolves the authenticated principal's current dream. A nil
// dream with a nil error means no dream is playing.
type DreamFetcher interface {
	CurrentDream(ctx context.Context) (*model.Dream, error)
}

// Synchronizer owns all writes to the playback Store. It refreshes the
// current dream when the session becomes authenticated and whenever a
// "playing" event arrives.
type Synchronizer struct {
	store   *Store
	fetcher DreamFetcher
	gen     atomic.Uint64
}

// NewSynchronizer creates a synchronizer writing into store.
func NewSynchronizer(store *Store, fetcher DreamFetcher) *Synchronizer {
	return &Synchronizer{store: store, fetcher: fetcher}
}

// Store returns the store this synchronizer writes to.
func (s *Synchronizer) Store() *Store {
	return s.store
}

// Refresh fetches the current dream and applies the result. Concurrent
// refreshes are resolved by generation token: only the most recently issued
// refresh may touch the store, so an older, slower response can never
// overwrite a newer one. A failed fetch retains the previous dream.
func (s *Synchronizer) Refresh(ctx context.Context) {
	token := s.gen.Add(1)
	s.store.SetLoading(true)

	// Loading is always cleared by whichever refresh currently owns the
	// state, even when the fetch fails.
	defer func() {
		if token == s.gen.Load() {
			s.store.SetLoading(false)
		}
	}()

	dream, err := s.fetcher.CurrentDream(ctx)
	if token != s.gen.Load() {
		// A newer refresh was issued while this one was in flight.
		return
	}
	if err != nil {
		logger.Warn("current dream refresh failed", logger.ErrorField(err))
		return
	}

	s.store.SetCurrentDream(dream)
}

// Reaction adapts the synchronizer into a dispatcher reaction: a "playing"
// event triggers a refresh. All other actions are ignored here.
func (s *Synchronizer) Reaction(ctx context.Context) Reaction {
	return func(entry Entry, env Envelope) {
		if entry.Action != ActionPlaying {
			return
		}
		go s.Refresh(ctx)
	}
}
