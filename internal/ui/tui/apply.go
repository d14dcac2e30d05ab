package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/virtup/virtup/internal/provisioning"
)

// RunApplyTUI wraps the provisioning run with a Bubble Tea TUI.
// runFn executes the pipeline, sending phase and event updates on the
// channel; the channel is closed when the run ends.
func RunApplyTUI(vmName string, runFn func(ch chan<- tea.Msg) error) error {
	m := NewApplyModel(vmName)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Run provisioning in background goroutine
	go func() {
		ch := make(chan tea.Msg, 10)
		go func() {
			defer close(ch)
			if err := runFn(ch); err != nil {
				p.Send(ErrMsg{Err: err})
			}
		}()

		for msg := range ch {
			p.Send(msg)
		}

		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}

// ChannelObserver implements provisioning.Observer by forwarding events to
// a Bubble Tea message channel, so phase internals render in the dashboard
// instead of writing to the captured terminal.
type ChannelObserver struct {
	ch chan<- tea.Msg
}

// NewChannelObserver creates an observer forwarding to ch.
func NewChannelObserver(ch chan<- tea.Msg) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Printf implements provisioning.Logger. Plain log lines are dropped; the
// dashboard renders phase transitions and structured events only.
func (o *ChannelObserver) Printf(string, ...interface{}) {}

// Event implements provisioning.Observer.
func (o *ChannelObserver) Event(event provisioning.Event) {
	o.ch <- EventMsg{Event: event}
}
