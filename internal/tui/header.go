package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader draws "minerui [RUNNING] pid 123 xmrig  cpu 98.0%  rss 1.2 GiB  up 3h 4m  status".
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)
	snap := m.snapshot

	state, stateText := m.processState()
	parts := []string{
		bg.render(m.title, styles.Logo),
		styles.StateBadge(state).Render(strings.ToUpper(stateText)),
	}

	if snap.HasProcess {
		p := snap.Process
		ident := fmt.Sprintf("pid %d", p.PID)
		if p.Name != "" {
			ident += " " + truncateMiddle(p.Name, 24)
		}
		parts = append(parts, bg.render(ident, styles.MutedText))
		if p.Running {
			parts = append(parts,
				bg.render(fmt.Sprintf("cpu %.1f%%", p.CPUPercent), styles.InfoText),
				bg.render("rss "+formatBytes(int64(p.MemoryRSS)), styles.InfoText),
			)
			if up := p.Uptime(); up > 0 {
				parts = append(parts, bg.render("up "+humanizeDuration(up), styles.MutedText))
			}
		}
	}

	if text := snap.StatusText; text != "" {
		parts = append(parts, bg.render(text, styles.Text))
	}
	if snap.LastError != nil && snap.IsOffline() {
		parts = append(parts, bg.render(truncateMiddle(snap.LastError.Error(), 60), styles.DangerText))
	}

	line := strings.Join(parts, bg.render("  ", styles.Text))
	return bg.fill(line, m.width)
}

// processState maps the snapshot to a badge key and label.
func (m Model) processState() (string, string) {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return "offline", "offline"
	case !snap.HasProcess:
		return "waiting", "waiting"
	default:
		label := snap.Process.StateLabel()
		return label, label
	}
}

// renderFooter draws the command hints and the console status.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)

	followLabel := "Follow"
	if m.console.follow {
		followLabel = "Pause"
	}
	hints := []struct{ key, desc string }{
		{"h", "Help"},
		{"Space", followLabel},
		{"/", "Search"},
		{"T", "Theme"},
		{"e", "Exit"},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, bg.render("<"+h.key+">", styles.AccentText)+bg.render(" "+h.desc, styles.MutedText))
	}

	autoTail := "off"
	if m.console.follow {
		autoTail = "on"
	}
	status := fmt.Sprintf("%d lines  auto-tail %s", len(m.console.lines), autoTail)
	if !m.lastUpdated.IsZero() {
		status += "  updated " + m.lastUpdated.Format(time.TimeOnly)
	}
	parts = append(parts, bg.render(status, styles.FaintText))
	if s := m.searchStatus(); s != "" {
		parts = append(parts, bg.render(s, styles.WarningText))
	}

	return bg.fill(strings.Join(parts, bg.render("  ", styles.Text)), m.width)
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	sections := m.keys.helpSections()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(14)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("theme: " + m.theme.Name))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
