package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/tui/common"
	"github.com/CrestNiraj12/feedline/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Timelines app.TimelineService
	Streams   app.StreamService // Nil disables live updates
	Log       zerolog.Logger
	Filter    domain.FilterOptions
	PageLimit int
	// Cycle lists the timelines the user can switch between; the first one
	// opens at start.
	Cycle []domain.Timeline
}

// App is the root Bubble Tea model. It owns the active timeline session and
// replaces it when the user switches timelines.
type App struct {
	deps    Deps
	index   int
	session *app.Session
	feed    feed.Model
	keys    common.KeyMap
	status  string // Transient status message
	width   int
	height  int
}

// NewApp opens a session for the first timeline in deps.Cycle.
func NewApp(deps Deps) (*App, error) {
	if len(deps.Cycle) == 0 {
		deps.Cycle = []domain.Timeline{domain.HomeTimeline()}
	}
	a := &App{deps: deps, keys: common.DefaultKeyMap()}
	if err := a.open(0); err != nil {
		return nil, err
	}
	return a, nil
}

// open closes the current session, if any, and starts one for timeline i.
// Results still in flight for the old session are discarded by the session
// id check in the feed model.
func (a *App) open(i int) error {
	s, err := app.NewSession(a.deps.Cycle[i], app.SessionDeps{
		Timelines: a.deps.Timelines,
		Streams:   a.deps.Streams,
		Log:       a.deps.Log,
	}, app.SessionOptions{
		Filter:    a.deps.Filter,
		PageLimit: a.deps.PageLimit,
	})
	if err != nil {
		return err
	}
	if a.session != nil {
		// Carry filter toggles across timelines.
		s.SetFilter(a.session.Feed().Filter())
		a.session.Close()
	}
	s.Start()
	a.session = s
	a.index = i
	a.feed = feed.New(s)
	return nil
}

// Close releases the active session.
func (a *App) Close() {
	if a.session != nil {
		a.session.Close()
	}
}

// Session returns the active session.
func (a *App) Session() *app.Session { return a.session }

// Init delegates to the feed model.
func (a *App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles global keys and routes everything else to the feed.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.Close()
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.NextTimeline) && len(a.deps.Cycle) > 1 {
			next := (a.index + 1) % len(a.deps.Cycle)
			if err := a.open(next); err != nil {
				a.status = "Error: " + err.Error()
				return a, nil
			}
			a.status = ""
			var sizeCmd tea.Cmd
			a.feed, sizeCmd = a.feed.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
			return a, tea.Batch(sizeCmd, a.feed.Init())
		}
	}

	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	return a, cmd
}

// View renders the feed plus any transient status.
func (a *App) View() string {
	s := a.feed.View()
	if a.status != "" {
		s += "\n" + common.ErrorStyle.Render(a.status)
	}
	return s
}
