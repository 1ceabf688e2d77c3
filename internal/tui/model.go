package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"mq-dashboard/internal/dashboard"
	"mq-dashboard/internal/domain"
)

const refreshInterval = time.Second

// ResultMsg carries one tick outcome from the poller.
type ResultMsg dashboard.Result

// ResultsClosedMsg is sent once the result channel is closed.
type ResultsClosedMsg struct{}

// RefreshMsg redraws relative times even when no result arrives.
type RefreshMsg time.Time

// Notifier returns a result handler that never blocks the poller. When the UI
// lags, notifications are dropped; the UI always re-reads the full snapshot.
func Notifier(ch chan<- dashboard.Result) func(dashboard.Result) {
	return func(r dashboard.Result) {
		select {
		case ch <- r:
		default:
		}
	}
}

// Model is the dashboard view. It only reads State; the poller is the single writer.
type Model struct {
	state   *dashboard.State
	results <-chan dashboard.Result
	keys    KeyMap
	title   string
	now     func() time.Time

	width  int
	height int

	snap        dashboard.Snapshot
	lastUpdate  time.Time
	connected   bool
	quitting    bool
	resultsDone bool
}

func NewModel(state *dashboard.State, results <-chan dashboard.Result, title string) *Model {
	return &Model{
		state:   state,
		results: results,
		keys:    DefaultKeyMap(),
		title:   title,
		now:     time.Now,
		snap:    state.Snapshot(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForResult(), refreshTick())
}

func (m *Model) waitForResult() tea.Cmd {
	if m.results == nil {
		return nil
	}
	results := m.results
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return ResultsClosedMsg{}
		}
		return ResultMsg(r)
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit, m.keys.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ResultMsg:
		m.snap = m.state.Snapshot()
		if dashboard.Result(msg).Outcome == dashboard.OutcomeApplied {
			m.lastUpdate = dashboard.Result(msg).At
			m.connected = true
		} else if dashboard.Result(msg).Outcome == dashboard.OutcomeFailed {
			m.connected = false
		}
		return m, m.waitForResult()
	case ResultsClosedMsg:
		m.resultsDone = true
	case RefreshMsg:
		m.snap = m.state.Snapshot()
		return m, refreshTick()
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 100
	}
	height := m.height
	if height <= 0 {
		height = 40
	}

	header := headerStyle.Render(m.title)
	tiles := renderTiles(dashboard.Tiles(m.snap), width)
	status := m.statusLine()
	help := mutedStyle.Render(m.keys.helpText())

	used := lipgloss.Height(header) + lipgloss.Height(tiles) + lipgloss.Height(status) + lipgloss.Height(help)
	charts := renderCharts(dashboard.Charts(m.snap), width-2, height-used)

	return lipgloss.JoinVertical(lipgloss.Left, header, tiles, charts, status, help)
}

func (m *Model) statusLine() string {
	var parts []string

	dot := lipgloss.NewStyle().Foreground(ColorWarn).Render("●")
	state := "connecting"
	if m.snap.HasLast {
		last := m.snap.Last
		switch last.Outcome {
		case dashboard.OutcomeFailed:
			dot = lipgloss.NewStyle().Foreground(ColorError).Render("●")
			state = "fetch failed (" + last.Failure.String() + ")"
		default:
			if m.connected || m.snap.Applied > 0 {
				dot = lipgloss.NewStyle().Foreground(ColorOK).Render("●")
				state = "live"
			}
		}
	}
	parts = append(parts, dot+" "+state)

	for _, src := range domain.Sources {
		series := m.snap.Series(src)
		parts = append(parts, fmt.Sprintf("%s %s samples", src.DisplayName(), humanize.Comma(int64(len(series.Samples)))))
	}
	if m.snap.Failed > 0 {
		parts = append(parts, humanize.Comma(int64(m.snap.Failed))+" failed")
	}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "updated "+humanize.RelTime(m.lastUpdate, m.now(), "ago", "from now"))
	}
	if m.resultsDone {
		parts = append(parts, "poller stopped")
	}

	return mutedStyle.Render(strings.Join(parts, " • "))
}
