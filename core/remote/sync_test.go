package remote

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/e-dream-ai/dreamstream/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves queued responses, optionally blocking until released so
// tests can interleave overlapping refreshes deterministically.
type fakeFetcher struct {
	mu        sync.Mutex
	responses []fetchResponse
	gates     []chan struct{}
}

type fetchResponse struct {
	dream *model.Dream
	err   error
}

func (f *fakeFetcher) CurrentDream(ctx context.Context) (*model.Dream, error) {
	f.mu.Lock()
	have := len(f.responses) > 0
	var resp fetchResponse
	var gate chan struct{}
	if have {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	if len(f.gates) > 0 {
		gate = f.gates[0]
		f.gates = f.gates[1:]
	}
	f.mu.Unlock()

	if !have {
		return nil, fmt.Errorf("unexpected fetch")
	}
	if gate != nil {
		<-gate
	}
	return resp.dream, resp.err
}

func (f *fakeFetcher) queue(dream *model.Dream, err error) {
	f.mu.Lock()
	f.responses = append(f.responses, fetchResponse{dream: dream, err: err})
	f.mu.Unlock()
}

func (f *fakeFetcher) gate() chan struct{} {
	g := make(chan struct{})
	f.mu.Lock()
	f.gates = append(f.gates, g)
	f.mu.Unlock()
	return g
}

func TestSynchronizerRefresh(t *testing.T) {
	t.Run("successful refresh replaces the dream and clears loading", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		sync := NewSynchronizer(NewStore(), fetcher)

		fetcher.queue(&model.Dream{ID: 1, UUID: "d-1"}, nil)
		sync.Refresh(context.Background())

		snap := sync.Store().Snapshot()
		require.NotNil(t, snap.CurrentDream)
		assert.Equal(t, "d-1", snap.CurrentDream.UUID)
		assert.False(t, snap.Loading)
	})

	t.Run("failed refresh retains the previous dream", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		sync := NewSynchronizer(NewStore(), fetcher)

		fetcher.queue(&model.Dream{ID: 1, UUID: "d-1"}, nil)
		sync.Refresh(context.Background())

		fetcher.queue(nil, fmt.Errorf("network down"))
		sync.Refresh(context.Background())

		snap := sync.Store().Snapshot()
		require.NotNil(t, snap.CurrentDream)
		assert.Equal(t, "d-1", snap.CurrentDream.UUID, "failure must not clear the current dream")
		assert.False(t, snap.Loading)
	})

	t.Run("nil dream with nil error clears the current dream", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		sync := NewSynchronizer(NewStore(), fetcher)

		fetcher.queue(&model.Dream{ID: 1}, nil)
		sync.Refresh(context.Background())

		fetcher.queue(nil, nil)
		sync.Refresh(context.Background())

		assert.Nil(t, sync.Store().Snapshot().CurrentDream)
	})

	t.Run("stale response never overwrites a newer one", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		sync := NewSynchronizer(NewStore(), fetcher)

		// First refresh blocks in flight; the second completes first.
		slowGate := fetcher.gate()
		fetcher.queue(&model.Dream{ID: 1, UUID: "stale"}, nil)
		fetcher.queue(&model.Dream{ID: 2, UUID: "fresh"}, nil)

		done := make(chan struct{})
		go func() {
			sync.Refresh(context.Background())
			close(done)
		}()

		// Let the slow refresh reach its fetch before issuing the next one.
		waitUntil(t, func() bool {
			fetcher.mu.Lock()
			defer fetcher.mu.Unlock()
			return len(fetcher.responses) == 1
		})

		sync.Refresh(context.Background())
		close(slowGate)
		<-done

		snap := sync.Store().Snapshot()
		require.NotNil(t, snap.CurrentDream)
		assert.Equal(t, "fresh", snap.CurrentDream.UUID)
		assert.False(t, snap.Loading)
	})
}

func TestSynchronizerReaction(t *testing.T) {
	fetcher := &fakeFetcher{}
	sync := NewSynchronizer(NewStore(), fetcher)
	reaction := sync.Reaction(context.Background())

	// Non-playing actions never trigger a fetch.
	reaction(Entry{Action: ActionTogglePlayback}, Envelope{Event: string(ActionTogglePlayback)})
	reaction(Entry{Action: ActionLikeCurrentDream}, Envelope{Event: string(ActionLikeCurrentDream)})

	fetcher.queue(&model.Dream{ID: 3, UUID: "d-3"}, nil)
	reaction(Entry{Action: ActionPlaying}, Envelope{Event: string(ActionPlaying)})

	waitUntil(t, func() bool {
		snap := sync.Store().Snapshot()
		return snap.CurrentDream != nil && snap.CurrentDream.UUID == "d-3"
	})
}
