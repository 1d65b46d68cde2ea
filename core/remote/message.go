package remote

// Envelope is the wire shape of every remote-control message, inbound and
// outbound. Event carries the symbolic action name; the remaining fields are
// optional per-action arguments. Consumers must tolerate unknown event values.
type Envelope struct {
	Event     string `json:"event"`
	UUID      string `json:"uuid,omitempty"`
	Name      string `json:"name,omitempty"`
	ID        int64  `json:"id,omitempty"`
	UserID    int64  `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Payload carries the optional arguments of an outbound action.
type Payload struct {
	UUID string
	Name string
	ID   int64
}

// Transport-level events handled outside the action catalog.
const (
	EventSession = "session" // server hello carrying the session identifier
	EventPing    = "ping"
	EventPong    = "pong"
)
