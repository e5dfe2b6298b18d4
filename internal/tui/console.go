package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/minerui/internal/logtail"
)

// Header and footer take one row each; the console box border takes two.
const chromeRows = 4

func (m *Model) resizeViewport() {
	w := max(m.width-2, 1)
	h := max(m.height-chromeRows, 1)
	if m.viewport.Width == 0 && m.viewport.Height == 0 {
		m.viewport = viewport.New(w, h)
		return
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

// refreshViewport re-renders the console lines and keeps the tail in view
// while following.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.viewport.SetContent(m.renderLines())
	if m.console.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderLines() string {
	if len(m.console.lines) == 0 {
		bg := newBgStyle(m.theme.FocusBg)
		return bg.render("Console is empty.", m.theme.Styles().FaintText)
	}

	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.FocusBg)
	active := -1
	if len(m.console.searchMatches) > 0 {
		active = m.console.searchMatches[m.console.searchMatchIdx]
	}

	out := make([]string, len(m.console.lines))
	for i, line := range m.console.lines {
		switch {
		case i == active:
			out[i] = lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background)).
				Render(line.Text)
		case m.console.searchRegex != nil && m.console.searchRegex.MatchString(line.Text):
			out[i] = bg.render(line.Text, styles.AccentText)
		default:
			out[i] = bg.render(line.Text, levelStyle(styles, logtail.DetectLevel(line.Text)))
		}
	}
	return strings.Join(out, "\n")
}

func levelStyle(styles Styles, level logtail.Level) lipgloss.Style {
	switch level {
	case logtail.LevelError:
		return styles.DangerText
	case logtail.LevelWarn:
		return styles.WarningText
	case logtail.LevelDebug:
		return styles.FaintText
	case logtail.LevelInfo:
		return styles.Text
	default:
		return styles.MutedText
	}
}

func (m Model) renderConsole() string {
	border := lipgloss.Color(m.theme.Border)
	if m.console.follow {
		border = lipgloss.Color(m.theme.BorderFocus)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(lipgloss.Color(m.theme.Background))
	return box.Render(m.viewport.View())
}

func (m *Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.console.follow = !m.console.follow
		if m.console.follow {
			m.viewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Clear):
		if m.store != nil {
			m.store.Clear()
		}
		m.console.lines = nil
		m.clearSearch()
		m.refreshViewport()
	case key.Matches(msg, m.keys.Search):
		m.console.searchActive = true
		m.console.searchInput.SetValue("")
		m.console.searchInput.Focus()
	case key.Matches(msg, m.keys.NextMatch):
		m.stepSearch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.stepSearch(-1)
	case key.Matches(msg, m.keys.Escape):
		if m.console.searchRegex != nil {
			m.clearSearch()
			m.refreshViewport()
		}
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.console.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.console.follow = true
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.console.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.console.follow = false
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.console.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.console.follow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.HalfViewDown()
		m.console.follow = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfViewUp()
		m.console.follow = false
	}
	return *m, nil
}

func (m *Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := m.console.searchInput.Value()
		m.console.searchActive = false
		m.console.searchInput.Blur()
		if strings.TrimSpace(query) == "" {
			return *m, nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
		}
		m.console.searchRegex = re
		m.console.searchQuery = query
		m.console.searchMatchIdx = 0
		m.findSearchMatches()
		m.scrollToMatch()
		m.refreshViewport()
		return *m, nil
	case tea.KeyEsc:
		m.console.searchActive = false
		m.console.searchInput.Blur()
		return *m, nil
	}

	var cmd tea.Cmd
	m.console.searchInput, cmd = m.console.searchInput.Update(msg)
	return *m, cmd
}

func (m *Model) findSearchMatches() {
	m.console.searchMatches = nil
	if m.console.searchRegex == nil {
		return
	}
	for i, line := range m.console.lines {
		if m.console.searchRegex.MatchString(line.Text) {
			m.console.searchMatches = append(m.console.searchMatches, i)
		}
	}
	if m.console.searchMatchIdx >= len(m.console.searchMatches) {
		m.console.searchMatchIdx = 0
	}
}

func (m *Model) stepSearch(delta int) {
	n := len(m.console.searchMatches)
	if n == 0 {
		return
	}
	m.console.searchMatchIdx = (m.console.searchMatchIdx + delta + n) % n
	m.scrollToMatch()
	m.refreshViewport()
}

// scrollToMatch centres the active match and stops following.
func (m *Model) scrollToMatch() {
	if len(m.console.searchMatches) == 0 {
		return
	}
	m.console.follow = false
	target := m.console.searchMatches[m.console.searchMatchIdx]
	m.viewport.SetYOffset(max(target-m.viewport.Height/2, 0))
}

func (m *Model) clearSearch() {
	m.console.searchRegex = nil
	m.console.searchQuery = ""
	m.console.searchMatches = nil
	m.console.searchMatchIdx = 0
}

// searchStatus describes the search state for the footer.
func (m Model) searchStatus() string {
	switch {
	case m.console.searchActive:
		return "search: " + m.console.searchInput.Value()
	case m.console.searchRegex != nil && len(m.console.searchMatches) == 0:
		return "Pattern not found: " + m.console.searchQuery
	case m.console.searchRegex != nil:
		return fmt.Sprintf("/%s %d/%d", m.console.searchQuery, m.console.searchMatchIdx+1, len(m.console.searchMatches))
	default:
		return ""
	}
}
