package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/virtup/virtup/internal/provisioning"
)

// maxEventRows bounds the activity log shown below the phase list.
const maxEventRows = 8

// PhaseStatus represents a provisioning phase for display.
type PhaseStatus struct {
	Name   string
	Key    string
	Done   bool
	Active bool
	Err    error
}

// Model is the Bubble Tea model for the provisioning dashboard.
type Model struct {
	// VM info
	VMName string

	// Pipeline phases
	Phases []PhaseStatus

	// Recent structured events
	Events []provisioning.Event

	// Animation
	SpinnerFrame int
	StartTime    time.Time

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewApplyModel creates a model for the apply command TUI.
func NewApplyModel(vmName string) Model {
	return Model{
		VMName:    vmName,
		StartTime: time.Now(),
		Phases: []PhaseStatus{
			{Name: "Host Packages", Key: "packages"},
			{Name: "UEFI Firmware Descriptor", Key: "firmware"},
			{Name: "Artifacts", Key: "artifacts"},
			{Name: "Domain Definition", Key: "define"},
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Quitting mid-run is an abort, not a success.
			if !m.Done && m.Err == nil {
				m.Err = ErrInterrupted
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PhaseMsg:
		m.updatePhase(msg)
		if msg.Err != nil {
			m.Err = msg.Err
			return m, tea.Quit
		}

	case EventMsg:
		m.Events = append(m.Events, msg.Event)
		if len(m.Events) > maxEventRows {
			m.Events = m.Events[len(m.Events)-maxEventRows:]
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	idx := -1
	for i, phase := range m.Phases {
		if phase.Key == msg.Phase {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Mark previous phases as done
	for i := 0; i < idx; i++ {
		m.Phases[i].Done = true
		m.Phases[i].Active = false
	}

	if msg.Done {
		m.Phases[idx].Done = true
		m.Phases[idx].Active = false
	} else {
		m.Phases[idx].Active = true
	}

	if msg.Err != nil {
		m.Phases[idx].Err = msg.Err
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
