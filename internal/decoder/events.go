package decoder

// Event represents a decoder lifecycle event.
// Minimal and stable: name, stream and sentence ids, optional fields.
type Event struct {
	Name       string
	StreamID   string
	SentenceID int
	Fields     map[string]any
}

// EventPublisher receives events from the decoder. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Event names.
const (
	EventRequestStart    = "request_start"
	EventDispatch        = "dispatch"
	EventTranslateDone   = "translate_done"
	EventTranslateFailed = "translate_failed"
	EventRequestFinished = "request_finished"
	EventRequestFailed   = "request_failed"
)
