package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/e-dream-ai/dreamstream/logger"

	"github.com/gorilla/websocket"
)

const (
	readLimit    = 4096
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Manager maintains the single authenticated remote-control connection of a
// client. Connect tears down any previous connection before dialing, so two
// connections can never be live at once and events can never leak to a stale
// principal. Connection failures leave the manager in the disconnected state;
// reconnection policy is up to the caller.
type Manager struct {
	endpoint   string
	dialer     *websocket.Dialer
	onEnvelope func(Envelope)

	mu        sync.Mutex
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	sessionID string
}

// NewManager creates a manager dialing the given websocket endpoint.
// onEnvelope receives every inbound envelope except the session hello.
func NewManager(endpoint string, onEnvelope func(Envelope)) *Manager {
	return &Manager{
		endpoint:   endpoint,
		dialer:     websocket.DefaultDialer,
		onEnvelope: onEnvelope,
	}
}

// Connect establishes the connection for the given bearer token, replacing
// any existing connection first. An empty token is rejected: unauthenticated
// sessions hold no connection.
func (m *Manager) Connect(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disconnectLocked()

	if token == "" {
		return fmt.Errorf("not authenticated")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := m.dialer.DialContext(ctx, m.endpoint, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to dial remote-control endpoint: %w", err)
	}

	m.conn = conn
	m.send = make(chan []byte, 64)
	m.done = make(chan struct{})
	m.sessionID = ""

	go m.readPump(conn)
	go m.writePump(conn, m.send, m.done)

	return nil
}

// Disconnect tears down the connection. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

func (m *Manager) disconnectLocked() {
	if m.conn == nil {
		return
	}
	close(m.done)
	m.conn.Close()
	m.conn = nil
	m.send = nil
	m.done = nil
	m.sessionID = ""
}

// Connected reports whether a connection is live.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// SessionID returns the server-assigned session identifier, empty until the
// server hello arrives.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Send transmits an envelope over the active connection.
func (m *Manager) Send(env Envelope) error {
	m.mu.Lock()
	send := m.send
	m.mu.Unlock()

	if send == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	select {
	case send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

func (m *Manager) readPump(conn *websocket.Conn) {
	defer m.dropConn(conn)

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("remote connection read error", logger.ErrorField(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			logger.Warn("invalid remote message", logger.ErrorField(err))
			continue
		}

		switch env.Event {
		case EventSession:
			m.mu.Lock()
			if m.conn == conn {
				m.sessionID = env.UUID
			}
			m.mu.Unlock()
		case EventPong:
			// handled by the pong handler on the control frame path
		default:
			if m.onEnvelope != nil {
				m.onEnvelope(env)
			}
		}
	}
}

func (m *Manager) writePump(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// dropConn clears the manager state if conn is still the live connection.
// A newer connection established meanwhile is left untouched.
func (m *Manager) dropConn(conn *websocket.Conn) {
	conn.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == conn {
		close(m.done)
		m.conn = nil
		m.send = nil
		m.done = nil
		m.sessionID = ""
	}
}
