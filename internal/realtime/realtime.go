// Package realtime keeps caches and stores synchronized with the backend
// through NATS push messages.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/netvista-io/netsync/internal/constants"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// State is the connection state machine. Transitions are driven by the
// NATS connection handlers.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SyncState maps the state onto the public enum.
func (s State) SyncState() netsync.SyncState {
	switch s {
	case StateConnecting:
		return netsync.SyncConnecting
	case StateConnected:
		return netsync.SyncConnected
	case StateError:
		return netsync.SyncError
	default:
		return netsync.SyncDisconnected
	}
}

// MessageType discriminates the push message union.
type MessageType string

const (
	// MessageRefresh asks for an immediate forced re-read.
	MessageRefresh MessageType = "refresh"

	// MessageInvalidate drops the module cache without re-reading.
	MessageInvalidate MessageType = "invalidate"

	// MessageStatus is a backend heartbeat; it carries no cache effect.
	MessageStatus MessageType = "status"
)

// Message is the tagged union published by the backend.
type Message struct {
	Type   MessageType    `json:"type"`
	Module netsync.Module `json:"module"`
	ID     string         `json:"id,omitempty"`
}

// Sink receives the cache effects of push messages.
type Sink interface {
	RefreshModule(module netsync.Module)
	InvalidateModule(module netsync.Module)
}

// DefaultSubjectPrefix is the subject root for push messages; one subject
// per module hangs beneath it.
const DefaultSubjectPrefix = "netvista.sync"

// Orchestrator subscribes to per-module subjects and applies push
// messages to the sink. Reconnects back off exponentially from one
// second to thirty.
type Orchestrator struct {
	url           string
	subjectPrefix string
	sink          Sink
	logger        netsync.Logger

	mu      sync.Mutex
	conn    *nats.Conn
	subs    []*nats.Subscription
	watched map[netsync.Module]struct{}
	state   atomic.Int32
}

// New creates an orchestrator. The sink is required; messages with no
// destination have no purpose.
func New(url string, subjectPrefix string, sink Sink, logger netsync.Logger) *Orchestrator {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}

	return &Orchestrator{
		url:           url,
		subjectPrefix: subjectPrefix,
		sink:          sink,
		logger:        logger,
	}
}

// reconnectDelay doubles per attempt from the minimum wait, capped at the
// maximum.
func reconnectDelay(attempts int) time.Duration {
	delay := constants.ReconnectWaitMin << attempts
	if delay > constants.ReconnectWaitMax || delay <= 0 {
		delay = constants.ReconnectWaitMax
	}

	return delay
}

func (o *Orchestrator) setState(state State) {
	o.state.Store(int32(state))
}

// Start connects and subscribes to the given modules, or all modules when
// none are named.
func (o *Orchestrator) Start(modules ...netsync.Module) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.conn != nil {
		return nil
	}

	if len(modules) == 0 {
		modules = netsync.KnownModules()
	}

	o.watched = make(map[netsync.Module]struct{}, len(modules))
	for _, module := range modules {
		o.watched[module] = struct{}{}
	}

	o.setState(StateConnecting)

	conn, err := nats.Connect(o.url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.CustomReconnectDelay(reconnectDelay),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			o.setState(StateConnecting)

			if o.logger != nil && err != nil {
				o.logger.Warn("sync connection lost", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			o.setState(StateConnected)

			if o.logger != nil {
				o.logger.Info("sync connection restored", nil)
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			o.setState(StateDisconnected)
		}),
	)
	if err != nil {
		o.setState(StateError)

		return fmt.Errorf("connecting to sync server: %w", err)
	}

	for _, module := range modules {
		subject := o.subjectPrefix + "." + string(module)

		sub, err := conn.Subscribe(subject, o.Dispatch)
		if err != nil {
			conn.Close()
			o.setState(StateError)

			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}

		o.subs = append(o.subs, sub)
	}

	o.conn = conn

	if conn.IsConnected() {
		o.setState(StateConnected)
	}

	return nil
}

// Dispatch applies one push message. Unknown types and unwatched modules
// are dropped.
func (o *Orchestrator) Dispatch(msg *nats.Msg) {
	var decoded Message

	err := json.Unmarshal(msg.Data, &decoded)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("dropping malformed sync message", map[string]interface{}{
				"subject": msg.Subject,
				"error":   err.Error(),
			})
		}

		return
	}

	o.mu.Lock()
	_, watched := o.watched[decoded.Module]
	o.mu.Unlock()

	if !watched {
		return
	}

	switch decoded.Type {
	case MessageRefresh:
		o.sink.RefreshModule(decoded.Module)
	case MessageInvalidate:
		o.sink.InvalidateModule(decoded.Module)
	case MessageStatus:
		// Heartbeat only.
	default:
		if o.logger != nil {
			o.logger.Warn("dropping sync message of unknown type", map[string]interface{}{
				"type":   string(decoded.Type),
				"module": string(decoded.Module),
			})
		}
	}
}

// Stop unsubscribes and closes the connection.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, sub := range o.subs {
		_ = sub.Unsubscribe()
	}

	o.subs = nil

	if o.conn != nil {
		o.conn.Close()
		o.conn = nil
	}

	o.setState(StateDisconnected)
}

// Status returns the public connection state.
func (o *Orchestrator) Status() netsync.SyncState {
	return State(o.state.Load()).SyncState()
}
