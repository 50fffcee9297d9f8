// Package api defines the contracts between the addin runtime and its host
// application adapter.
package api

// EventKind enumerates the host lifecycle notifications the runtime consumes.
type EventKind int

const (
	EventViewActivating EventKind = iota
	EventViewActivated
	EventDocumentOpened
	EventDocumentClosing
	EventDocumentClosed
	// EventIdleTick is delivered on the host's UI thread only when it has no
	// pending interactive work. It is the only context in which idle-affine
	// operations may run.
	EventIdleTick
	// EventDispatcherCrash is delivered when an exception escapes into the
	// host UI thread's dispatch loop. Err carries the failure.
	EventDispatcherCrash

	eventKindCount
)

var eventKindNames = [...]string{
	"view-activating",
	"view-activated",
	"document-opened",
	"document-closing",
	"document-closed",
	"idle-tick",
	"dispatcher-crash",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// EventKinds returns every kind a host can deliver, in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, int(eventKindCount))
	for k := EventKind(0); k < eventKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Response is the mutable part of an event the handler writes back to the
// host. Marking a dispatcher crash handled prevents host-level termination.
type Response struct {
	Handled bool
}

// Event is a host lifecycle notification. Document, View and Err are set
// depending on Kind; all are treated opaquely except for identity.
type Event struct {
	Kind     EventKind
	Document Document
	View     View
	Err      error
	Response *Response
}

// Handler consumes one host lifecycle notification. Handlers always run on
// the host's UI thread.
type Handler func(Event)

// EventSource is the host's lifecycle notification surface. Attach replaces
// nothing: attaching a kind that already has a handler is a host-side error,
// which is why the runtime funnels every attach through its subscription
// registry.
type EventSource interface {
	Attach(kind EventKind, h Handler) error
	Detach(kind EventKind) error
}
