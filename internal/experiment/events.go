package experiment

// Lifecycle event names.
const (
	EventConfigured   = "experiment.configured"
	EventRunStarted   = "experiment.run_started"
	EventRunCompleted = "experiment.run_completed"
	EventRunFailed    = "experiment.run_failed"
)

// Event represents an experiment lifecycle event.
// Minimal and stable: name + run ID and optional fields via key/values.
type Event struct {
	Name   string
	RunID  string
	Fields map[string]any
}

// EventPublisher receives events from experiments. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
