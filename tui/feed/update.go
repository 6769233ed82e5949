package feed

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
)

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		if msg.SessionID != m.session.ID() {
			return m, nil
		}
		return m.handlePageLoaded(msg)

	case ChangeMsg:
		if msg.SessionID != m.session.ID() {
			return m, nil
		}
		m.applyChange(msg.Change)
		return m, m.waitForChange()

	case ChangesClosedMsg:
		if msg.SessionID != m.session.ID() {
			return m, nil
		}
		if m.live != liveOff {
			m.live = liveEnded
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) (Model, tea.Cmd) {
	if msg.Result.Skipped && msg.Err == nil {
		// Another request owns the pager; its result arrives separately.
		if msg.Newer {
			m.refreshing = false
		} else {
			m.loading = m.session.Pager().Loading()
		}
		return m, nil
	}
	if msg.Newer {
		m.refreshing = false
	} else {
		m.loading = false
	}
	if isClosed(msg.Err) {
		return m, nil
	}
	if msg.Err != nil {
		m.err = msg.Err
		return m, nil
	}
	m.err = nil

	m.resync()
	switch {
	case msg.Newer && msg.Result.Truncated:
		m.notice = fmt.Sprintf("%d new; some older ones were skipped.", msg.Result.Visible)
	case msg.Newer && msg.Result.Visible > 0:
		m.notice = fmt.Sprintf("%d new", msg.Result.Visible)
	case msg.Newer:
		m.notice = "Up to date."
	case msg.Result.Exhausted:
		m.notice = "End of timeline."
	default:
		m.notice = ""
	}

	// A page that was entirely filtered out would leave the view stuck.
	if !msg.Newer && msg.Result.Added > 0 && msg.Result.Visible == 0 && !m.exhausted {
		m.loading = true
		return m, m.loadPage()
	}
	cmd := m.maybePrefetch()
	return m, cmd
}

func (m *Model) applyChange(ch app.Change) {
	switch ch.Kind {
	case app.ChangeInserted, app.ChangeDeleted, app.ChangeUpdated:
		m.resync()
	case app.ChangeGapFilled:
		m.resync()
		switch {
		case ch.Err != nil:
			m.notice = "Could not load missed statuses: " + ch.Err.Error()
		case ch.Truncated:
			m.notice = fmt.Sprintf("Loaded %d missed statuses; some older ones were skipped.", ch.Count)
		case ch.Count > 0:
			m.notice = fmt.Sprintf("Caught up on %d statuses.", ch.Count)
		}
		// The fill may have run an older page for an empty feed.
		if m.loading && !m.session.Pager().Loading() {
			m.loading = false
		}
	case app.ChangeLive:
		m.live = liveOn
	case app.ChangeDegraded:
		m.live = liveDegraded
	case app.ChangeStreamEnded:
		m.live = liveEnded
		if ch.Err != nil {
			m.notice = "Live updates stopped: " + ch.Err.Error()
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.statuses)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
		cmd := m.maybePrefetch()
		return m, cmd

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.statuses)-1, 0)
		m.ensureCursorVisible()
		cmd := m.maybePrefetch()
		return m, cmd

	case key.Matches(msg, m.keys.LoadMore):
		if m.loading || m.exhausted {
			return m, nil
		}
		m.loading = true
		return m, m.loadPage()

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.notice = ""
		return m, m.loadNewer()

	case key.Matches(msg, m.keys.ToggleBoosts):
		opts := m.session.Feed().Filter()
		opts.ShowBoosts = !opts.ShowBoosts
		m.setFilter(opts)
		cmd := m.maybePrefetch()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleReplies):
		opts := m.session.Feed().Filter()
		opts.ShowReplies = !opts.ShowReplies
		m.setFilter(opts)
		cmd := m.maybePrefetch()
		return m, cmd

	case key.Matches(msg, m.keys.Open):
		st, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if link := st.Displayed().URL; link != nil {
			return m, openURL(link.String())
		}

	case key.Matches(msg, m.keys.ToggleHints):
		m.showHints = !m.showHints
	}

	return m, nil
}

func (m *Model) setFilter(opts domain.FilterOptions) {
	n := m.session.SetFilter(opts)
	m.resync()
	m.notice = fmt.Sprintf("%d visible%s", n, m.filterLabel())
}

// maybePrefetch requests the next older page once the cursor nears the end of
// the visible list.
func (m *Model) maybePrefetch() tea.Cmd {
	if m.loading || m.exhausted || m.err != nil {
		return nil
	}
	if len(m.statuses)-1-m.cursor > prefetchThreshold {
		return nil
	}
	m.loading = true
	return m.loadPage()
}
