package gpubridge

// EventType names a registry event.
type EventType string

// Registry events.
const (
	// EventAnimationComplete fires when a running animation reaches the end
	// of its last repeat.
	EventAnimationComplete EventType = "animationComplete"
)

// Event is delivered to the handler installed with WithEventHandler.
type Event struct {
	Type EventType `json:"type"`
	ID   ID        `json:"id"`
}

// EventHandler receives registry events.
type EventHandler func(Event)
