package domain

type EventType string

const (
	EventTypeContainer EventType = "container"
	EventTypeImage     EventType = "image"
)

const ActionStart = "start"

// RuntimeEvent is a single message from the runtime's event stream.
type RuntimeEvent struct {
	Type    EventType
	Action  string
	ActorId string
	// Attributes mirrors the actor attributes; for containers this includes
	// the container labels and "name".
	Attributes map[string]string
}

// IsContainerStart reports whether the event announces a started container
// that carries an id.
func (e RuntimeEvent) IsContainerStart() bool {
	return e.Type == EventTypeContainer && e.Action == ActionStart && e.ActorId != ""
}

// StreamItem is one element of the event stream: either an event or an error.
type StreamItem struct {
	Event RuntimeEvent
	Err   error
}
