package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"musicsync/internal/library"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	selStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Sync %s (%d tracks)", m.col.Name, len(m.rows))))
	b.WriteString("\n")

	if m.showHelp {
		return b.String() + helpView()
	}

	switch m.phase {
	case phaseRunning:
		b.WriteString(fmt.Sprintf("%s %3.0f%% %s\n", m.spin.View(), m.fraction*100, m.progText))
		b.WriteString(dimStyle.Render("x cancel  ? help"))
		return b.String()
	case phaseDone:
		line := m.doneLine()
		if m.runErr != nil {
			line = errStyle.Render(line)
		}
		b.WriteString(line + "\n")
		b.WriteString(dimStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString(m.renderTable())
	if m.notice != "" {
		b.WriteString(errStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ move  ←/→ cycle action  d defaults  s sync  q quit  ? help"))
	return b.String()
}

func (m *model) renderTable() string {
	if len(m.rows) == 0 {
		return "Nothing to sync.\n"
	}
	var b strings.Builder
	end := m.offset + m.visibleRows()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		title := r.Track.Title
		if title == "" {
			title = r.Track.RemoteID
		}
		line := fmt.Sprintf("%-34s %-24s %-22s %s",
			truncate(title, 34),
			truncate(r.URL.DisplayName(), 24),
			library.StatusMeta(r.Track.Status).Label,
			library.ActionMeta(r.Action).Label)
		if i == m.selected {
			line = selStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func helpView() string {
	return `
Review the planned action per track, then start the sync.

  ↑/k, ↓/j   Move selection
  ←/h, →/l   Cycle through the legal actions for the track's status
  d          Reset every row to the collection's default action
  s          Run the sync pass
  x          Cancel a running pass (keeps partial progress)
  q          Quit without syncing
`
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
