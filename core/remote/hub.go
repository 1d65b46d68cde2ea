package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/e-dream-ai/dreamstream/cache"
	"github.com/e-dream-ai/dreamstream/logger"

	"github.com/gorilla/websocket"
)

// Device kinds. Desktop and web are playback surfaces; a controller only
// sends commands.
const (
	KindDesktop    = "desktop"
	KindWeb        = "web"
	KindController = "controller"
)

// HubClient is one connected device of a user.
type HubClient struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	UserID   int64
	Username string
	DeviceID string
	Kind     string

	// mu serializes Kind access and close-vs-send on the Send channel.
	mu     sync.RWMutex
	closed bool
}

// Hub is the server-side registry of remote-control connections, keyed by
// user. An inbound control event from one device fans out to the user's other
// devices.
type Hub struct {
	// user -> connected devices
	users map[int64]map[*HubClient]bool

	// user:device -> client (one connection per device)
	deviceClients map[string]*HubClient

	register   chan *HubClient
	unregister chan *HubClient
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex

	done chan struct{}
}

// BroadcastMessage targets all devices of one user.
type BroadcastMessage struct {
	UserID        int64
	Message       []byte
	ExcludeDevice string // device that originated the event, if any
	OnlyKind      string // restrict delivery to one device kind, empty for all
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		users:         make(map[int64]map[*HubClient]bool),
		deviceClients: make(map[string]*HubClient),
		register:      make(chan *HubClient),
		unregister:    make(chan *HubClient),
		broadcast:     make(chan *BroadcastMessage, 256),
		done:          make(chan struct{}),
	}
}

// Run starts the hub main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToUser(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop stops the hub.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) registerClient(client *HubClient) {
	h.mu.Lock()

	key := h.deviceKey(client.UserID, client.DeviceID)

	// A device reconnecting evicts its previous connection.
	if old, exists := h.deviceClients[key]; exists {
		h.removeClient(old)
	}

	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[*HubClient]bool)
	}
	h.users[client.UserID][client] = true
	h.deviceClients[key] = client
	h.mu.Unlock()

	// Session hello: the device learns its session identifier.
	client.SendEnvelope(&Envelope{Event: EventSession, UUID: client.DeviceID})

	ctx := context.Background()
	presence := cache.NewPresenceCache()
	if err := presence.UpdateDevicePresence(ctx, client.UserID, client.DeviceID, client.Kind); err != nil {
		logger.Warn("failed to update device presence on register",
			logger.ErrorField(err),
			logger.Int64("user", client.UserID),
			logger.String("device", client.DeviceID))
	}
	online, err := presence.ActiveDeviceCount(ctx, client.UserID)
	if err != nil {
		online = 0
	}

	logger.Info("remote client registered",
		logger.Int64("user", client.UserID),
		logger.String("device", client.DeviceID),
		logger.String("kind", client.Kind),
		logger.Int64("online", online))
}

func (h *Hub) unregisterClient(client *HubClient) {
	h.mu.Lock()
	h.removeClient(client)
	h.mu.Unlock()

	ctx := context.Background()
	presence := cache.NewPresenceCache()
	if err := presence.RemoveDevicePresence(ctx, client.UserID, client.DeviceID); err != nil {
		logger.Warn("failed to remove device presence on unregister",
			logger.ErrorField(err),
			logger.Int64("user", client.UserID),
			logger.String("device", client.DeviceID))
	}

	logger.Info("remote client unregistered",
		logger.Int64("user", client.UserID),
		logger.String("device", client.DeviceID))
}

// removeClient removes a client. Caller must hold the lock.
func (h *Hub) removeClient(client *HubClient) {
	key := h.deviceKey(client.UserID, client.DeviceID)

	if clients, ok := h.users[client.UserID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			client.closeSend()

			if len(clients) == 0 {
				delete(h.users, client.UserID)
			}
		}
	}

	if h.deviceClients[key] == client {
		delete(h.deviceClients, key)
	}
}

func (h *Hub) broadcastToUser(msg *BroadcastMessage) {
	h.mu.RLock()
	clients, ok := h.users[msg.UserID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clientList := make([]*HubClient, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	// Full or already-closed clients are removed directly under the lock:
	// this runs inside the hub loop, so sending to the unregister channel
	// here would deadlock the loop against itself.
	var stalled []*HubClient
	for _, client := range clientList {
		if msg.ExcludeDevice != "" && client.DeviceID == msg.ExcludeDevice {
			continue
		}
		if msg.OnlyKind != "" && client.GetKind() != msg.OnlyKind {
			continue
		}
		if !client.trySend(msg.Message) {
			stalled = append(stalled, client)
		}
	}

	if len(stalled) == 0 {
		return
	}
	h.mu.Lock()
	for _, client := range stalled {
		h.removeClient(client)
	}
	h.mu.Unlock()
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.users {
		for client := range clients {
			client.closeSend()
		}
	}
	h.users = make(map[int64]map[*HubClient]bool)
	h.deviceClients = make(map[string]*HubClient)
}

func (h *Hub) deviceKey(userID int64, deviceID string) string {
	return fmt.Sprintf("%d:%s", userID, deviceID)
}

// Register registers a client.
func (h *Hub) Register(client *HubClient) {
	h.register <- client
}

// Unregister unregisters a client.
func (h *Hub) Unregister(client *HubClient) {
	h.unregister <- client
}

// Broadcast delivers a raw message to all devices of a user.
func (h *Hub) Broadcast(userID int64, message []byte, excludeDevice, onlyKind string) {
	h.broadcast <- &BroadcastMessage{
		UserID:        userID,
		Message:       message,
		ExcludeDevice: excludeDevice,
		OnlyKind:      onlyKind,
	}
}

// BroadcastEnvelope delivers an envelope to all devices of a user.
func (h *Hub) BroadcastEnvelope(userID int64, env *Envelope, excludeDevice, onlyKind string) error {
	env.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	h.Broadcast(userID, data, excludeDevice, onlyKind)
	return nil
}

// GetUserClients returns all connected devices of a user.
func (h *Hub) GetUserClients(userID int64) []*HubClient {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.users[userID]
	result := make([]*HubClient, 0, len(clients))
	for client := range clients {
		result = append(result, client)
	}
	return result
}

// GetClient returns the client of a specific device, nil if not connected.
func (h *Hub) GetClient(userID int64, deviceID string) *HubClient {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.deviceClients[h.deviceKey(userID, deviceID)]
}

// UpdateClientKind updates the kind of a connected device.
func (h *Hub) UpdateClientKind(userID int64, deviceID, kind string) {
	h.mu.RLock()
	client := h.deviceClients[h.deviceKey(userID, deviceID)]
	h.mu.RUnlock()

	if client != nil {
		client.mu.Lock()
		client.Kind = kind
		client.mu.Unlock()
	}
}

// ========== HubClient methods ==========

// ReadPump reads inbound messages until the connection drops. Pings refresh
// the device's presence heartbeat; everything else goes to handler.
func (c *HubClient) ReadPump(ctx context.Context, handler func(ctx context.Context, client *HubClient, env *Envelope)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := c.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Warn("remote websocket read error",
						logger.ErrorField(err),
						logger.Int64("user", c.UserID),
						logger.String("device", c.DeviceID))
				}
				return
			}

			var env Envelope
			if err := json.Unmarshal(message, &env); err != nil {
				logger.Warn("invalid remote message format",
					logger.ErrorField(err),
					logger.Int64("user", c.UserID))
				continue
			}

			if env.Event == EventPing {
				presence := cache.NewPresenceCache()
				if err := presence.UpdateDevicePresence(ctx, c.UserID, c.DeviceID, c.GetKind()); err != nil {
					logger.Warn("failed to update device presence",
						logger.ErrorField(err),
						logger.Int64("user", c.UserID),
						logger.String("device", c.DeviceID))
				}

				c.SendEnvelope(&Envelope{Event: EventPong})
				continue
			}

			handler(ctx, c, &env)
		}
	}
}

// WritePump writes outbound messages and keeps the connection alive.
func (c *HubClient) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEnvelope queues an envelope for this device. Messages are dropped when
// the buffer is full or the client has been evicted.
func (c *HubClient) SendEnvelope(env *Envelope) error {
	env.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.trySend(data)
	return nil
}

// trySend queues data for delivery. Returns false when the client is closed
// or its buffer is full. Holding mu across the send keeps it mutually
// exclusive with closeSend: a ReadPump ping racing a hub-side eviction must
// never send on a closed channel.
func (c *HubClient) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *HubClient) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// GetKind returns the device kind (thread safe).
func (c *HubClient) GetKind() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Kind
}
