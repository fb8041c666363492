package inertia

import (
	"context"
	"net/http"
)

var (
	_ Event = StartEvent{}
	_ Event = BodyEvent{}

	_ Sender = (SenderFunc)(nil)
)

// Event is a frame of the two-phase response stream: exactly one StartEvent
// followed by body events, the last of which has More set to false.
type Event interface {
	event()
}

// StartEvent carries the response status and headers.
type StartEvent struct {
	Header     http.Header
	StatusCode int
}

// BodyEvent carries a chunk of the response body.
type BodyEvent struct {
	Body []byte

	// More reports whether further body events follow.
	More bool
}

func (StartEvent) event() {}
func (BodyEvent) event()  {}

// Sender delivers response events to the transport.
type Sender interface {
	Send(context.Context, Event) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(context.Context, Event) error

func (fn SenderFunc) Send(ctx context.Context, ev Event) error { return fn(ctx, ev) }
