// Package tui provides a Bubble Tea-based terminal UI for VM provisioning.
package tui

import (
	"errors"

	"github.com/virtup/virtup/internal/provisioning"
)

// ErrInterrupted is returned when the operator quits the dashboard while
// the run is still in flight.
var ErrInterrupted = errors.New("provisioning interrupted")

// PhaseMsg reports progress of a provisioning phase.
type PhaseMsg struct {
	Phase string
	Done  bool
	Err   error
}

// EventMsg carries a structured provisioning event for the activity log.
type EventMsg struct {
	Event provisioning.Event
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
