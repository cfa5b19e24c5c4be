// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines display state, key handling and status updates
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Output
	driver    string
	device    string
	exclusive bool
	blocking  bool
	latencyMs int

	// Stream
	encoding   string
	sampleRate int
	channels   int
	bitDepth   int

	// Source
	source string

	// Stats
	pushed      int64
	delivered   int64
	partial     int64
	recoveries  int64
	timeouts    int64
	reconfigs   int64
	queued      int
	lastError   string
	lastRequest string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreamInfo()
	s += m.renderStats()
	s += m.renderHelp()

	return s
}

// renderHeader renders driver and device
func (m Model) renderHeader() string {
	mode := "shared"
	if m.exclusive {
		mode = "exclusive"
	}
	wait := "blocking"
	if !m.blocking {
		wait = "non-blocking"
	}

	return fmt.Sprintf(`┌─ pcmout ─────────────────────────────────────────────┐
│ Driver: %-45s │
│ Device: %-45s │
│ Mode:   %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(m.driver, 45), truncate(m.device, 45), fmt.Sprintf("%s, %s, %dms", mode, wait, m.latencyMs))
}

// renderStreamInfo renders the negotiated format and source
func (m Model) renderStreamInfo() string {
	if m.sampleRate == 0 {
		return "│ No stream                                            │\n"
	}

	s := fmt.Sprintf("│ Source: %-45s │\n", truncate(m.source, 45))
	s += fmt.Sprintf("│ Format: %-45s │\n",
		fmt.Sprintf("%s %d-bit %dHz %s", m.encoding, m.bitDepth, m.sampleRate, channelName(m.channels)))
	return s
}

// renderStats renders delivery statistics
func (m Model) renderStats() string {
	s := fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Pushed: %-12d Delivered: %-12d Queued: %-4d│
│ Partial: %-6d Recoveries: %-6d Timeouts: %-6d     │
│ Reconfigurations: %-35d│
`, m.pushed, m.delivered, m.queued, m.partial, m.recoveries, m.timeouts, m.reconfigs)

	if m.lastRequest != "" {
		s += fmt.Sprintf("│ Last:   %-45s │\n", truncate(m.lastRequest, 45))
	}
	if m.lastError != "" {
		s += fmt.Sprintf("│ Error:  %-45s │\n", truncate(m.lastError, 45))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ e:Exclusive b:Blocking n:Device +/-:Latency c:Clear q│
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "e":
		m.send(ToggleExclusive)
	case "b":
		m.send(ToggleBlocking)
	case "n":
		m.send(NextDevice)
	case "+", "=", "up":
		m.send(LatencyUp)
	case "-", "down":
		m.send(LatencyDown)
	case "c":
		m.send(ClearBuffer)
	}

	return m, nil
}

// send posts a request without blocking the UI
func (m *Model) send(kind ControlKind) {
	m.lastRequest = kind.String()
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Requests <- ControlMsg{Kind: kind}:
	default:
		m.lastError = "playback loop busy, request dropped"
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Driver != "" {
		m.driver = msg.Driver
	}
	if msg.Device != "" {
		m.device = msg.Device
	}
	if msg.Exclusive != nil {
		m.exclusive = *msg.Exclusive
	}
	if msg.Blocking != nil {
		m.blocking = *msg.Blocking
	}
	if msg.LatencyMs != 0 {
		m.latencyMs = msg.LatencyMs
	}
	if msg.SampleRate != 0 {
		m.encoding = msg.Encoding
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.Source != "" {
		m.source = msg.Source
	}
	if msg.Pushed != 0 {
		m.pushed = msg.Pushed
		m.delivered = msg.Delivered
		m.partial = msg.Partial
		m.recoveries = msg.Recoveries
		m.timeouts = msg.Timeouts
		m.reconfigs = msg.Reconfigurations
		m.queued = msg.Queued
	}
	if msg.Err != "" {
		m.lastError = msg.Err
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Driver           string
	Device           string
	Exclusive        *bool
	Blocking         *bool
	LatencyMs        int
	Encoding         string
	SampleRate       int
	Channels         int
	BitDepth         int
	Source           string
	Pushed           int64
	Delivered        int64
	Partial          int64
	Recoveries       int64
	Timeouts         int64
	Reconfigurations int64
	Queued           int
	Err              string
}

// Utility functions
func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%dch", channels)
}
