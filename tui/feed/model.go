package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/tui/common"
)

// prefetchThreshold is how close to the bottom the cursor gets before the
// next older page is requested.
const prefetchThreshold = 5

// --- Messages ---

// PageLoadedMsg carries the outcome of a pager call for one session.
type PageLoadedMsg struct {
	SessionID string
	Newer     bool
	Result    app.PageResult
	Err       error
}

// ChangeMsg carries one live notification for one session.
type ChangeMsg struct {
	SessionID string
	Change    app.Change
}

// ChangesClosedMsg is sent once the session's change stream is exhausted.
type ChangesClosedMsg struct {
	SessionID string
}

type liveState int

const (
	liveOff liveState = iota
	liveConnecting
	liveOn
	liveDegraded
	liveEnded
)

// --- Model ---

// Model renders the visible statuses of one timeline session.
type Model struct {
	session *app.Session
	keys    common.KeyMap
	spinner spinner.Model

	statuses []domain.Status // Visible snapshot, newest first
	cursor   int
	start    int
	width    int
	height   int

	loading    bool // Older page in flight
	refreshing bool // Newer statuses in flight
	exhausted  bool
	err        error
	notice     string
	live       liveState
	showHints  bool

	now func() time.Time
}

// New creates a feed model for session. The session should already be
// started so its change stream is live.
func New(session *app.Session) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#8AADF4"))

	live := liveOff
	if session.Live() {
		live = liveConnecting
	}
	return Model{
		session: session,
		keys:    common.DefaultKeyMap(),
		spinner: s,
		loading: true,
		live:    live,
		now:     time.Now,
	}
}

// Init loads the first page and starts listening for live changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadPage(),
		m.waitForChange(),
		m.spinner.Tick,
	)
}

// SessionID identifies the session this view renders.
func (m Model) SessionID() string { return m.session.ID() }

// Statuses returns the visible snapshot.
func (m Model) Statuses() []domain.Status { return m.statuses }

// Cursor returns the current cursor position.
func (m Model) Cursor() int { return m.cursor }

// Loading reports whether an older page is being fetched.
func (m Model) Loading() bool { return m.loading }

// Err returns the last load error, if any.
func (m Model) Err() error { return m.err }

// Selected returns the highlighted status, if any.
func (m Model) Selected() (domain.Status, bool) {
	if m.cursor < 0 || m.cursor >= len(m.statuses) {
		return domain.Status{}, false
	}
	return m.statuses[m.cursor], true
}

// resync rebuilds the snapshot from the session's feed, keeping the selected
// status under the cursor when it is still visible.
func (m *Model) resync() {
	anchor := ""
	if st, ok := m.Selected(); ok {
		anchor = st.ID
	}
	m.statuses = m.session.Feed().Visible()
	m.exhausted = m.session.Pager().Exhausted()

	if anchor != "" {
		for i, st := range m.statuses {
			if st.ID == anchor {
				m.cursor = i
				m.ensureCursorVisible()
				return
			}
		}
	}
	if m.cursor >= len(m.statuses) {
		m.cursor = max(len(m.statuses)-1, 0)
	}
	m.ensureCursorVisible()
}

func (m Model) visibleCount() int {
	// Header (~4), status bar (~3).
	avail := m.height - 7
	if avail < itemHeight {
		return 1
	}
	return avail / itemHeight
}

func (m *Model) ensureCursorVisible() {
	n := m.visibleCount()
	if m.cursor < m.start {
		m.start = m.cursor
	}
	if m.cursor >= m.start+n {
		m.start = m.cursor - n + 1
	}
	if m.start > len(m.statuses)-1 {
		m.start = max(len(m.statuses)-1, 0)
	}
	if m.start < 0 {
		m.start = 0
	}
}

func (m Model) filterLabel() string {
	opts := m.session.Feed().Filter()
	label := ""
	if !opts.ShowBoosts {
		label += " -boosts"
	}
	if !opts.ShowReplies {
		label += " -replies"
	}
	return label
}
