package remote

import (
	"sync"
	"time"

	"github.com/e-dream-ai/dreamstream/logger"
)

// Sender transmits outbound envelopes over the active connection.
type Sender interface {
	Send(env Envelope) error
	Connected() bool
}

// Reaction handles one decoded inbound action. Reactions run in registration
// order and must be idempotent against repeated identical deliveries: the
// dispatcher does not de-duplicate.
type Reaction func(entry Entry, env Envelope)

// Translator maps a notification key to a display string.
type Translator func(key string) string

// Notifier surfaces a localized message to the user (a toast).
type Notifier func(message string)

// Dispatcher is the single routing point for remote-control events. Outbound
// actions go through Send; inbound envelopes go through Receive. Both sides
// treat anything missing from the catalog as a no-op.
type Dispatcher struct {
	sender    Sender
	translate Translator
	notify    Notifier

	mu        sync.RWMutex
	reactions []Reaction
}

// NewDispatcher creates a dispatcher. translate and notify may be nil, in
// which case inbound actions update state without user-facing notifications.
func NewDispatcher(sender Sender, translate Translator, notify Notifier) *Dispatcher {
	return &Dispatcher{sender: sender, translate: translate, notify: notify}
}

// React registers a reaction. Registration order is delivery order.
func (d *Dispatcher) React(r Reaction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reactions = append(d.reactions, r)
}

// Send emits an outbound action. Unknown actions are no-ops; so is sending
// while disconnected, so the UI stays responsive offline.
func (d *Dispatcher) Send(action Action, payload *Payload) {
	if _, ok := Lookup(string(action)); !ok {
		return
	}
	if d.sender == nil || !d.sender.Connected() {
		logger.Debug("remote send dropped, not connected", logger.String("action", string(action)))
		return
	}

	env := Envelope{Event: string(action), Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		env.UUID = payload.UUID
		env.Name = payload.Name
		env.ID = payload.ID
	}

	if err := d.sender.Send(env); err != nil {
		logger.Warn("remote send failed",
			logger.ErrorField(err),
			logger.String("action", string(action)))
	}
}

// Receive routes an inbound envelope. Unknown event names are ignored;
// matched actions run every registered reaction in order, then toast the
// entry's notification unless the entry is silent.
func (d *Dispatcher) Receive(env Envelope) {
	entry, ok := Lookup(env.Event)
	if !ok {
		logger.Debug("unknown remote event ignored", logger.String("event", env.Event))
		return
	}

	d.mu.RLock()
	reactions := make([]Reaction, len(d.reactions))
	copy(reactions, d.reactions)
	d.mu.RUnlock()

	for _, r := range reactions {
		r(entry, env)
	}

	if !entry.Silent && entry.NotifyKey != "" && d.notify != nil && d.translate != nil {
		d.notify(d.translate(entry.NotifyKey))
	}
}
