package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHubClient builds a client without a live websocket; hub routing only
// touches the Send channel.
func newHubClient(h *Hub, userID int64, deviceID, kind string) *HubClient {
	return &HubClient{
		Hub:      h,
		Send:     make(chan []byte, 16),
		UserID:   userID,
		DeviceID: deviceID,
		Kind:     kind,
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

// recvEnvelope reads one envelope off a client's send channel, skipping the
// session hello delivered on registration.
func recvEnvelope(t *testing.T, c *HubClient) *Envelope {
	t.Helper()
	for {
		select {
		case data, ok := <-c.Send:
			require.True(t, ok, "send channel closed")
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Event == EventSession {
				continue
			}
			return &env
		case <-time.After(time.Second):
			t.Fatal("no envelope received")
		}
	}
}

func assertNoEnvelope(t *testing.T, c *HubClient) {
	t.Helper()
	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return
			}
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Event == EventSession {
				continue
			}
			t.Fatalf("unexpected envelope: %s", env.Event)
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	t.Run("events fan out to the user's other devices", func(t *testing.T) {
		h := startHub(t)

		desktop := newHubClient(h, 1, "dev-a", KindDesktop)
		web := newHubClient(h, 1, "dev-b", KindWeb)
		h.Register(desktop)
		h.Register(web)

		waitUntil(t, func() bool { return len(h.GetUserClients(1)) == 2 })

		require.NoError(t, h.BroadcastEnvelope(1, &Envelope{
			Event: string(ActionGoNextDream),
		}, "dev-a", ""))

		env := recvEnvelope(t, web)
		assert.Equal(t, string(ActionGoNextDream), env.Event)
		assert.NotZero(t, env.Timestamp)

		// The originator is excluded.
		assertNoEnvelope(t, desktop)
	})

	t.Run("kind filter restricts delivery", func(t *testing.T) {
		h := startHub(t)

		desktop := newHubClient(h, 1, "dev-a", KindDesktop)
		controller := newHubClient(h, 1, "dev-b", KindController)
		h.Register(desktop)
		h.Register(controller)
		waitUntil(t, func() bool { return len(h.GetUserClients(1)) == 2 })

		require.NoError(t, h.BroadcastEnvelope(1, &Envelope{
			Event: string(ActionTogglePlayback),
		}, "", KindDesktop))

		env := recvEnvelope(t, desktop)
		assert.Equal(t, string(ActionTogglePlayback), env.Event)
		assertNoEnvelope(t, controller)
	})

	t.Run("users are isolated from each other", func(t *testing.T) {
		h := startHub(t)

		mine := newHubClient(h, 1, "dev-a", KindWeb)
		theirs := newHubClient(h, 2, "dev-b", KindWeb)
		h.Register(mine)
		h.Register(theirs)
		waitUntil(t, func() bool {
			return len(h.GetUserClients(1)) == 1 && len(h.GetUserClients(2)) == 1
		})

		require.NoError(t, h.BroadcastEnvelope(1, &Envelope{
			Event: string(ActionPlaybackFaster),
		}, "", ""))

		recvEnvelope(t, mine)
		assertNoEnvelope(t, theirs)
	})
}

func TestHubStalledClientRemoval(t *testing.T) {
	h := startHub(t)

	// A client whose send buffer cannot accept anything.
	stalled := &HubClient{Hub: h, Send: make(chan []byte), UserID: 1, DeviceID: "dev-a", Kind: KindWeb}
	h.Register(stalled)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == stalled })

	require.NoError(t, h.BroadcastEnvelope(1, &Envelope{
		Event: string(ActionGoNextDream),
	}, "", ""))

	// The hub loop must stay responsive afterwards: a later registration
	// completes and the stalled client is gone.
	late := newHubClient(h, 1, "dev-b", KindWeb)
	done := make(chan struct{})
	go func() {
		h.Register(late)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub loop stalled after a full-buffer broadcast")
	}

	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == nil })
	assert.Equal(t, late, h.GetClient(1, "dev-b"))
}

func TestHubEvictedClientSendIsNoop(t *testing.T) {
	h := startHub(t)

	first := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(first)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == first })

	second := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(second)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == second })

	// The evicted client's read pump may still answer a late ping; the send
	// must drop silently instead of hitting the closed channel.
	require.NoError(t, first.SendEnvelope(&Envelope{Event: EventPong}))

	require.NoError(t, h.BroadcastEnvelope(1, &Envelope{
		Event: string(ActionGoNextDream),
	}, "", ""))
	env := recvEnvelope(t, second)
	assert.Equal(t, string(ActionGoNextDream), env.Event)
}

func TestHubDeviceEviction(t *testing.T) {
	h := startHub(t)

	first := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(first)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == first })

	// The same device reconnecting replaces the old connection.
	second := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(second)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == second })

	assert.Len(t, h.GetUserClients(1), 1)

	// The evicted client's channel is closed.
	waitUntil(t, func() bool {
		for {
			select {
			case _, ok := <-first.Send:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	})
}

func TestHubSessionHello(t *testing.T) {
	h := startHub(t)

	client := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(client)

	select {
	case data := <-client.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, EventSession, env.Event)
		assert.Equal(t, "dev-a", env.UUID)
	case <-time.After(time.Second):
		t.Fatal("session hello not received")
	}
}

func TestHubUpdateClientKind(t *testing.T) {
	h := startHub(t)

	client := newHubClient(h, 1, "dev-a", KindWeb)
	h.Register(client)
	waitUntil(t, func() bool { return h.GetClient(1, "dev-a") == client })

	h.UpdateClientKind(1, "dev-a", KindDesktop)
	assert.Equal(t, KindDesktop, client.GetKind())
}
