// Package widget renders the stats report as centered text in the
// terminal, refreshed on a fixed tick.
package widget

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"github.com/statpane/statpane/internal/monitor"
)

// resizeSettle is how long a resize burst has to stay quiet before the
// tick loop resumes with an immediate refresh.
const resizeSettle = 150 * time.Millisecond

var (
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

type tickMsg time.Time

type reportMsg monitor.Report

// resizeSettledMsg carries the resize generation it was scheduled for;
// stale ones from superseded bursts are ignored.
type resizeSettledMsg struct {
	seq int
}

// Model is the single bubbletea model owning all display state. Sampling
// runs in a command goroutine and comes back as a reportMsg, so the
// Update loop itself never blocks on the external GPU tool.
type Model struct {
	monitor  *monitor.Monitor
	logger   *zap.Logger
	interval time.Duration

	report     monitor.Report
	haveReport bool
	refreshing bool
	resizing   bool
	resizeSeq  int

	width  int
	height int

	spin     spinner.Model
	quitting bool
}

// New returns the widget model. interval is the refresh cadence.
func New(mon *monitor.Monitor, interval time.Duration, logger *zap.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = spinnerStyle

	return Model{
		monitor:  mon,
		logger:   logger,
		interval: interval,
		spin:     sp,
		// Init fires the first refresh; marking it in flight up front
		// keeps the first tick from starting a concurrent one.
		refreshing: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("Stats display"),
		m.refreshCmd(),
		m.tickCmd(),
		m.spin.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tickMsg:
		// The next tick is always scheduled; whether it refreshes
		// depends on the guards below.
		next := m.tickCmd()
		if m.resizing || m.refreshing {
			// Paused during a resize burst, or the previous cycle is
			// still sampling. Cycles stay strictly sequential.
			return m, next
		}
		m.refreshing = true
		return m, tea.Batch(next, m.refreshCmd())

	case reportMsg:
		m.report = monitor.Report(msg)
		m.haveReport = true
		m.refreshing = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizing = true
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(resizeSettle, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		m.resizing = false
		if m.refreshing {
			return m, nil
		}
		// One immediate refresh now that the window has settled.
		m.refreshing = true
		return m, m.refreshCmd()

	case spinner.TickMsg:
		if m.haveReport {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	text := m.report.Text
	if !m.haveReport {
		text = m.spin.View() + " Initializing..."
	}

	if m.width <= 0 || m.height <= 0 {
		return text
	}

	wrapped := wordwrap.String(text, max(1, m.width-2))
	block := textStyle.Render(wrapped)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	mon := m.monitor
	return func() tea.Msg {
		return reportMsg(mon.Refresh(context.Background()))
	}
}
