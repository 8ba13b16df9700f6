// Package tui is the interactive review screen for a reconciled collection:
// the user walks the action table, cycles per-track actions and launches the
// sync pass without blocking the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"musicsync/internal/engine"
	"musicsync/internal/library"
	"musicsync/internal/worker"
)

type phase int

const (
	phaseReview phase = iota
	phaseRunning
	phaseDone
)

type progressMsg worker.Progress

type doneMsg worker.Result

type model struct {
	eng  *engine.Engine
	col  *library.Collection
	rows []engine.ActionRow

	phase    phase
	selected int
	offset   int
	height   int
	width    int

	job      *worker.Job
	spin     spinner.Model
	fraction float64
	progText string
	notice   string
	runErr   error
	showHelp bool
}

// New builds the review screen for col's current action table.
func New(eng *engine.Engine, col *library.Collection) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &model{
		eng:  eng,
		col:  col,
		rows: engine.BuildActionTable(col),
		spin: sp,
	}
}

// Err returns the terminal error of the sync pass, if any. Valid after the
// program has quit.
func (m *model) Err() error { return m.runErr }

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case progressMsg:
		m.fraction = msg.Fraction
		m.progText = msg.Text
		return m, m.waitProgress()
	case doneMsg:
		m.phase = phaseDone
		m.runErr = msg.Err
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.job != nil {
			m.job.Cancel()
		}
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.phase {
	case phaseReview:
		return m.handleReviewKey(msg)
	case phaseRunning:
		if msg.String() == "x" || msg.String() == "esc" {
			m.job.Cancel()
		}
		return m, nil
	default:
		if msg.String() == "q" || msg.String() == "enter" {
			return m, tea.Quit
		}
		return m, nil
	}
}

func (m *model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case "left", "h":
		m.cycleAction(-1)
	case "right", "l", " ", "enter":
		m.cycleAction(1)
	case "d":
		m.resetDefaults()
	case "s":
		return m.startSync()
	}
	m.clampScroll()
	return m, nil
}

// cycleAction moves the selected row to the next legal action for its status.
func (m *model) cycleAction(dir int) {
	if m.selected >= len(m.rows) {
		return
	}
	r := &m.rows[m.selected]
	opts := library.ActionOptions(r.Track.Status)
	if len(opts) == 0 {
		return
	}
	cur := 0
	for i, a := range opts {
		if a == r.Action {
			cur = i
			break
		}
	}
	r.Action = opts[(cur+dir+len(opts))%len(opts)]
	m.notice = ""
}

func (m *model) resetDefaults() {
	for i := range m.rows {
		m.rows[i].Action = m.col.SyncActions[m.rows[i].Track.Status]
	}
	m.notice = ""
}

// unresolvedCount counts rows still parked on DECIDE_INDIVIDUALLY; the sync
// pass must not start until the user has settled every one of them.
func (m *model) unresolvedCount() int {
	n := 0
	for _, r := range m.rows {
		if r.Action == library.ActionDecideIndividually {
			n++
		}
	}
	return n
}

func (m *model) startSync() (tea.Model, tea.Cmd) {
	if n := m.unresolvedCount(); n > 0 {
		m.notice = fmt.Sprintf("%d tracks are still set to decide individually; pick an action for them first", n)
		return m, nil
	}
	m.notice = ""
	m.phase = phaseRunning
	m.fraction = 0
	m.progText = "Starting sync"
	rows := m.rows
	m.job = worker.Run(context.Background(), func(ctx context.Context, report func(float64, string), interrupted func() bool) error {
		return m.eng.Sync(ctx, m.col, rows, engine.Options{
			Progress:    report,
			Interrupted: interrupted,
		})
	})
	return m, tea.Batch(m.spin.Tick, m.waitProgress(), m.waitDone())
}

func (m *model) waitProgress() tea.Cmd {
	job := m.job
	return func() tea.Msg {
		if p, ok := <-job.Progress(); ok {
			return progressMsg(p)
		}
		return nil
	}
}

func (m *model) waitDone() tea.Cmd {
	job := m.job
	return func() tea.Msg {
		return doneMsg(<-job.Done())
	}
}

func (m *model) clampScroll() {
	visible := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visible {
		m.offset = m.selected - visible + 1
	}
}

func (m *model) visibleRows() int {
	// Header, status line and key hints take up a handful of lines.
	v := m.height - 6
	if v < 1 {
		v = 10
	}
	return v
}

func (m *model) doneLine() string {
	switch {
	case m.runErr == nil:
		return "Sync finished."
	case errors.Is(m.runErr, engine.ErrInterrupted):
		return "Sync cancelled; partial progress kept."
	default:
		var partial *engine.PartialError
		if errors.As(m.runErr, &partial) {
			return fmt.Sprintf("Sync finished with %d failed items.", len(partial.Errors))
		}
		return "Sync failed: " + m.runErr.Error()
	}
}
