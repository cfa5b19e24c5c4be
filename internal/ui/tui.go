// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the control channel to the playback loop
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ControlKind identifies a request from the TUI to the playback loop
type ControlKind int

const (
	ToggleExclusive ControlKind = iota
	ToggleBlocking
	NextDevice
	LatencyUp
	LatencyDown
	ClearBuffer
)

func (k ControlKind) String() string {
	switch k {
	case ToggleExclusive:
		return "toggle exclusive"
	case ToggleBlocking:
		return "toggle blocking"
	case NextDevice:
		return "next device"
	case LatencyUp:
		return "latency up"
	case LatencyDown:
		return "latency down"
	case ClearBuffer:
		return "clear"
	}
	return "unknown"
}

// ControlMsg is a control request sent to the playback loop
type ControlMsg struct {
	Kind ControlKind
}

// Controls holds channels for communication with the playback loop.
// The playback loop owns the output engine; the TUI only posts requests.
type Controls struct {
	Requests chan ControlMsg
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Requests: make(chan ControlMsg, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		blocking: true,
		controls: controls,
	}
}

// Run creates the TUI program; the caller starts it
func Run(controls *Controls) *tea.Program {
	return tea.NewProgram(NewModel(controls), tea.WithAltScreen())
}
