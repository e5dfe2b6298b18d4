package tui

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/minerui/internal/prefs"
	"github.com/five82/minerui/internal/state"
)

// ModelOptions configures the console model.
type ModelOptions struct {
	Store    *state.Store
	Prefs    *prefs.Store
	Logger   *zap.Logger
	PollTick time.Duration
	Title    string
}

// Model is the root Bubble Tea model of the terminal console.
type Model struct {
	store    *state.Store
	prefs    *prefs.Store
	logger   *zap.Logger
	pollTick time.Duration
	title    string
	keys     keyMap

	theme  Theme
	width  int
	height int
	ready  bool

	snapshot    state.Snapshot
	lastUpdated time.Time

	viewport viewport.Model
	console  consoleState
	showHelp bool
}

// consoleState tracks what the viewport shows.
type consoleState struct {
	lines  []state.Line
	follow bool

	searchActive   bool
	searchInput    textinput.Model
	searchRegex    *regexp.Regexp
	searchQuery    string
	searchMatches  []int
	searchMatchIdx int
}

// NewModel creates the console model.
func NewModel(opts ModelOptions) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "minerui"
	}

	ti := textinput.New()
	ti.Placeholder = "Search console..."
	ti.CharLimit = 100

	return Model{
		store:    opts.Store,
		prefs:    opts.Prefs,
		logger:   logger,
		pollTick: pollTick,
		title:    title,
		keys:     defaultKeyMap(),
		theme:    GetTheme(opts.Prefs.Get().Theme),
		console:  consoleState{follow: true, searchInput: ti},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewport()
		m.refreshViewport()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderConsole())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.console.searchActive {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		if _, err := m.prefs.Update(func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			m.logger.Warn("save theme preference", zap.Error(err))
		}
		m.refreshViewport()
		return m, nil
	}

	return m.handleConsoleKey(msg)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()
	m.console.lines = snap.Console
	if m.console.searchRegex != nil {
		m.findSearchMatches()
	}
	m.refreshViewport()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}
