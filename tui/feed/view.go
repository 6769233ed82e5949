package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/feedline/domain"
	"github.com/CrestNiraj12/feedline/tui/common"
)

// itemHeight is the rendered height of one status box: header, two content
// lines and a metadata line inside a two-line border.
const itemHeight = 6

const defaultWidth = 80

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader() + "\n")

	switch {
	case len(m.statuses) == 0 && (m.loading || m.refreshing):
		b.WriteString(fmt.Sprintf("  %s Loading %s...\n", m.spinner.View(), m.session.Timeline().Label()))
	case len(m.statuses) == 0 && m.err != nil:
		b.WriteString(common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n  Press m to retry.\n")
	case len(m.statuses) == 0:
		b.WriteString("  Nothing to show here.\n")
	default:
		end := min(m.start+m.visibleCount(), len(m.statuses))
		for i := m.start; i < end; i++ {
			b.WriteString(m.renderStatus(m.statuses[i], i == m.cursor) + "\n")
		}
		if m.loading {
			b.WriteString(fmt.Sprintf("  %s Loading older statuses...\n", m.spinner.View()))
		}
	}

	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) contentWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	// Border and padding take four columns.
	return max(w-4, 12)
}

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Render("feedline")
	tl := common.TimelineStyle.Render(m.session.Timeline().Label())
	return title + " " + tl + "  " + m.renderLiveIndicator()
}

func (m Model) renderLiveIndicator() string {
	switch m.live {
	case liveConnecting:
		return common.DegradedStyle.Render("○ connecting")
	case liveOn:
		return common.LiveStyle.Render("● live")
	case liveDegraded:
		return common.DegradedStyle.Render("◌ reconnecting")
	case liveEnded:
		return common.DegradedStyle.Render("○ offline")
	default:
		return ""
	}
}

func (m Model) renderStatus(st domain.Status, selected bool) string {
	width := m.contentWidth()
	shown := st.Displayed()

	author := common.AuthorStyle.Render(common.SanitizeForTerminal(shown.Account.Label()))
	if acct := common.SanitizeForTerminal(shown.Account.Acct); acct != "" {
		author += " " + common.HandleStyle.Render("@"+acct)
	}
	header := author + " " + common.TimestampStyle.Render(common.RelativeTime(shown.CreatedAt, m.now()))
	if st.IsBoost() {
		header = common.BoostStyle.Render("⟳ "+common.SanitizeForTerminal(st.Account.Label())) + " " + header
	}
	if shown.IsReply() {
		header += common.ReplyStyle.Render(" ↩ reply")
	}

	body := statusText(shown)
	lines := strings.Split(truncateToTwoLines(body, width), "\n")
	for len(lines) < 2 {
		lines = append(lines, "")
	}
	for i, ln := range lines {
		lines[i] = common.ContentStyle.Render(ln)
	}

	meta := fmt.Sprintf("↩ %d  ⟳ %d  ★ %d", shown.RepliesCount, shown.ReblogsCount, shown.FavouritesCount)
	if n := len(shown.Media); n > 0 {
		meta += fmt.Sprintf("  ▣ %d", n)
	}
	if shown.Card != nil && shown.Card.Title != "" {
		meta += "  ⧉ " + common.SanitizeForTerminal(shown.Card.Title)
	}

	rows := []string{header}
	rows = append(rows, lines...)
	rows = append(rows, common.MetadataStyle.Render(meta))
	for i, r := range rows {
		rows[i] = ansi.Truncate(r, width, "…")
	}

	style := common.UnselectedStyle
	if selected {
		style = common.SelectedStyle
	}
	return style.Width(width + 2).Render(strings.Join(rows, "\n"))
}

// statusText is the displayable body: the spoiler warning when one is set,
// otherwise the plain text content.
func statusText(st domain.Status) string {
	if cw := strings.TrimSpace(st.SpoilerText); cw != "" {
		return "CW: " + common.SanitizeForTerminal(cw)
	}
	text := common.PlainText(st.Content)
	if text == "" && len(st.Media) > 0 {
		if desc := st.Media[0].Description; desc != "" {
			return "[" + common.SanitizeForTerminal(desc) + "]"
		}
	}
	return text
}

func truncateToTwoLines(text string, width int) string {
	if width < 12 {
		width = 12
	}
	// Render with width to handle both explicit newlines and wrapping.
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= 2 {
		return wrapped
	}
	return strings.Join(lines[:2], "\n") + "…"
}

func (m Model) renderStatusBar() string {
	var parts []string
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	if m.err != nil && len(m.statuses) > 0 {
		parts = append(parts, common.ErrorStyle.Render("Error: "+m.err.Error()))
	}
	if n := len(m.statuses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d%s", m.cursor+1, n, m.filterLabel()))
	}
	if m.exhausted {
		parts = append(parts, "end")
	}
	bar := common.StatusBarStyle.Render(strings.Join(parts, " · "))

	if !m.showHints {
		return bar + "\n" + common.MetadataStyle.Render("? keys")
	}
	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return bar + "\n" + common.MetadataStyle.Render(strings.Join(hints, " · "))
}
