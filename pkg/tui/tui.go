// Package tui provides a terminal dashboard for a running accompanist
// session: current score position, last live note, stretch factor, and
// playback progress. It is read-only — it observes snapshots published
// by the event loop and never drives matching itself.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"accompanist/pkg/snapshot"
)

// Acid-inspired color scheme, carried over from this project's earlier
// tooling.
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(silverGray).PaddingLeft(2)
	valueStyle = lipgloss.NewStyle().Foreground(acidYellow).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).MarginTop(1)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// snapshotMsg wraps a snapshot.Snapshot so bubbletea can dispatch it
// through Update like any other message.
type snapshotMsg snapshot.Snapshot

// closedMsg signals that the snapshot subscription ended (the session
// stopped publishing).
type closedMsg struct{}

// Model renders the latest published Snapshot.
type Model struct {
	snapshots <-chan snapshot.Snapshot
	latest    snapshot.Snapshot
	have      bool
	closed    bool
}

// New builds a TUI model that reads from the given snapshot channel.
func New(snapshots <-chan snapshot.Snapshot) Model {
	return Model{snapshots: snapshots}
}

// Init starts the first listen for a snapshot.
func (m Model) Init() tea.Cmd {
	return listenCmd(m.snapshots)
}

func listenCmd(ch <-chan snapshot.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Update handles TUI messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case snapshotMsg:
		m.latest = snapshot.Snapshot(msg)
		m.have = true
		return m, listenCmd(m.snapshots)
	case closedMsg:
		m.closed = true
		return m, nil
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" ACCOMPANIST SESSION "))
	s.WriteString("\n\n")

	if !m.have {
		s.WriteString(labelStyle.Render("waiting for the first match..."))
	} else {
		s.WriteString(m.viewSnapshot())
	}

	if m.closed {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("session ended"))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("q: quit"))
	return boxStyle.Render(s.String())
}

func (m Model) viewSnapshot() string {
	snap := m.latest
	var s strings.Builder

	if snap.HasMatch {
		fmt.Fprintf(&s, "%s score #%d / live #%d\n",
			labelStyle.Render("last match:"), snap.MatchScore, snap.MatchLive)
		fmt.Fprintf(&s, "%s %s\n",
			labelStyle.Render("stretch factor:"),
			valueStyle.Render(fmt.Sprintf("%.3f", snap.StretchFactor)))
		fmt.Fprintf(&s, "%s %d\n",
			labelStyle.Render("live velocity:"), snap.LiveVelocity)
	}

	fmt.Fprintf(&s, "%s %d matched, %d ignored\n",
		labelStyle.Render("matcher:"), snap.MatchCount, snap.IgnoredCount)

	if snap.PlaybackTotal > 0 {
		fmt.Fprintf(&s, "%s %d / %d events emitted\n",
			labelStyle.Render("playback:"), snap.PlaybackHead, snap.PlaybackTotal)
	}

	return s.String()
}

// Run starts the TUI program, blocking until the user quits or the
// snapshot channel closes.
func Run(snapshots <-chan snapshot.Snapshot) error {
	p := tea.NewProgram(New(snapshots), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
