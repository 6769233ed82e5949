package feed

import (
	"errors"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/feedline/app"
)

func (m Model) loadPage() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		res, err := s.LoadNextPage()
		return PageLoadedMsg{SessionID: s.ID(), Result: res, Err: err}
	}
}

func (m Model) loadNewer() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		res, err := s.LoadNewer()
		return PageLoadedMsg{SessionID: s.ID(), Newer: true, Result: res, Err: err}
	}
}

// waitForChange blocks on the next live notification. It is re-issued after
// every ChangeMsg, so at most one is outstanding per session.
func (m Model) waitForChange() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ch, ok := <-s.Changes()
		if !ok {
			return ChangesClosedMsg{SessionID: s.ID()}
		}
		return ChangeMsg{SessionID: s.ID(), Change: ch}
	}
}

func openURL(rawURL string) tea.Cmd {
	if !isSafeExternalURL(rawURL) {
		return nil
	}
	return func() tea.Msg {
		_ = exec.Command(openerCommand(), rawURL).Start()
		return nil
	}
}

func openerCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

func isClosed(err error) bool {
	return errors.Is(err, app.ErrSessionClosed)
}
