package watch

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmacdonald/folio/internal/events"
)

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	baseURL string
	token   string

	width  int
	height int

	health   HealthState
	counters Counters
	eventLog []events.Event
	activity Activity

	table table.Model
	theme Theme

	hubEvents chan events.Event
	lastID    *atomic.Int64

	lastError string
	now       func() time.Time
}

// New creates a watch model for the folio server at baseURL.
func New(baseURL, token string) Model {
	return Model{
		baseURL:   baseURL,
		token:     token,
		table:     newEventTable(),
		theme:     NewDefaultTheme(),
		hubEvents: make(chan events.Event, 100),
		lastID:    new(atomic.Int64),
		now:       time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		subscribe(m.baseURL, m.token, m.lastID.Load, m.hubEvents),
		receiveNext(m.hubEvents),
		func() tea.Msg { return fetchHealth(m.baseURL) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(eventColumns(msg.Width - 6))
		m.table.SetHeight(max(msg.Height-14, 5))

	case tickMsg:
		m.activity.Decay(m.now())
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case eventMsg:
		e := events.Event(msg)
		if e.ID > m.lastID.Load() {
			m.lastID.Store(e.ID)
		}
		m.counters.Apply(e)
		m.activity.OnEvent(m.now())

		// Newest first.
		m.eventLog = append([]events.Event{e}, m.eventLog...)
		if len(m.eventLog) > maxRows {
			m.eventLog = m.eventLog[:maxRows]
		}
		m.table.SetRows(eventRows(m.eventLog))

		m.health.Connected = true
		m.lastError = ""
		return m, receiveNext(m.hubEvents)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.Deliveries = msg.Deliveries
		m.health.LastCheck = m.now()
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg { return fetchHealth(m.baseURL) })

	case sseDisconnectedMsg:
		m.health.Connected = false
		m.lastError = "event feed disconnected, reconnecting..."
		if msg.err != nil {
			m.lastError = "event feed: " + msg.err.Error() + ", reconnecting..."
		}
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return reconnectMsg{} })

	case reconnectMsg:
		return m, subscribe(m.baseURL, m.token, m.lastID.Load, m.hubEvents)

	case errMsg:
		m.lastError = msg.Error()
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg { return fetchHealth(m.baseURL) })
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to folio..."
	}

	header := renderHeader(m.health, m.counters, m.activity, m.theme, m.width, m.now())

	var body string
	if len(m.eventLog) == 0 {
		body = m.theme.Dim.Render("  Waiting for events...")
	} else {
		body = m.table.View()
	}
	stream := m.theme.Border.Width(max(m.width-4, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left, m.theme.Title.Render("EVENTS"), body),
	)

	parts := []string{header, stream}
	if m.lastError != "" {
		parts = append(parts, m.theme.Failed.Render(" ⚠ "+m.lastError))
	}
	parts = append(parts, m.theme.Dim.Render(" [q] Quit • [↑/↓] Scroll"))

	return lipgloss.NewStyle().Margin(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
