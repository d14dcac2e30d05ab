package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal printf-style logging surface used by phases.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during
// provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType // Type of event
	Phase     string    // Phase name (e.g., "packages", "firmware")
	Message   string    // Human-readable message
	Resource  string    // Resource name/path if applicable
	Timestamp time.Time // When the event occurred
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventResourceCreated indicates a host resource was created or fetched.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists and the step
	// was a no-op.
	EventResourceExists EventType = "resource.exists"
	// EventStepSkipped indicates a step was skipped, either by
	// configuration or by operator choice.
	EventStepSkipped EventType = "step.skipped"
	// EventWarning indicates a non-fatal problem worth surfacing.
	EventWarning EventType = "warning"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements the Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	log.Print(formatEvent(event))
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	return strings.Join(parts, " ")
}

// LogResourceExists logs that a resource is already present.
func LogResourceExists(observer Observer, phase, resource string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resource,
		Message:  "already present, skipping",
	})
}

// LogResourceCreated logs a successful resource creation or fetch.
func LogResourceCreated(observer Observer, phase, resource string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resource,
		Message:  "created",
	})
}

// LogStepSkipped logs that a step was skipped.
func LogStepSkipped(observer Observer, phase, reason string) {
	observer.Event(Event{
		Type:    EventStepSkipped,
		Phase:   phase,
		Message: reason,
	})
}

// LogWarning logs a non-fatal problem.
func LogWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventWarning,
		Phase:   phase,
		Message: message,
	})
}
