package remotelog

import (
	"context"
	"time"

	"github.com/KarpelesLab/emitter"
	"github.com/kelindar/event"
)

// Topics emitted on Relay.Events.
const (
	TopicListening = "listening" // args: listen address
	TopicConnected = "connected" // args: session id, client address
	TopicFailed    = "failed"    // args: error
	TopicClosed    = "closed"
)

// emitTimeout bounds how long a slow Events subscriber can hold up the relay.
const emitTimeout = 100 * time.Millisecond

// Event type identifiers of the relay lifecycle notifications.
const (
	TypeListening uint32 = iota + 1
	TypeConnected
	TypeFailed
	TypeClosed
)

// ListeningEvent is published once the listening socket is ready.
type ListeningEvent struct {
	Addr string
}

func (ListeningEvent) Type() uint32 { return TypeListening }

// ConnectedEvent is published when the client has been accepted.
type ConnectedEvent struct {
	Session string
	Client  string
}

func (ConnectedEvent) Type() uint32 { return TypeConnected }

// FailedEvent is published when sending to the client failed and the relay
// tore itself down.
type FailedEvent struct {
	Err error
}

func (FailedEvent) Type() uint32 { return TypeFailed }

// ClosedEvent is published whenever the relay released its sockets.
type ClosedEvent struct{}

func (ClosedEvent) Type() uint32 { return TypeClosed }

// publish dispatches a lifecycle notification to the typed subscribers and
// to the Events hub. Typed handlers run on their own goroutines.
func (r *Relay) publish(ev any) {
	switch e := ev.(type) {
	case ListeningEvent:
		event.Publish(r.events, e)
		r.emit(TopicListening, e.Addr)
	case ConnectedEvent:
		event.Publish(r.events, e)
		r.emit(TopicConnected, e.Session, e.Client)
	case FailedEvent:
		event.Publish(r.events, e)
		r.emit(TopicFailed, e.Err)
	case ClosedEvent:
		event.Publish(r.events, e)
		r.emit(TopicClosed)
	}
}

func (r *Relay) emit(topic string, args ...any) {
	if r.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	r.Events.Emit(ctx, topic, args...)
}

// OnListening registers fn for ListeningEvent. It returns an unsubscribe func.
func (r *Relay) OnListening(fn func(ListeningEvent)) func() {
	return event.Subscribe(r.events, fn)
}

// OnConnected registers fn for ConnectedEvent.
func (r *Relay) OnConnected(fn func(ConnectedEvent)) func() {
	return event.Subscribe(r.events, fn)
}

// OnFailed registers fn for FailedEvent.
func (r *Relay) OnFailed(fn func(FailedEvent)) func() {
	return event.Subscribe(r.events, fn)
}

// OnClosed registers fn for ClosedEvent.
func (r *Relay) OnClosed(fn func(ClosedEvent)) func() {
	return event.Subscribe(r.events, fn)
}
