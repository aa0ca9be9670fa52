// Package tui implements the Bubble Tea review screen.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/stager/internal/core/logging"
	"github.com/hay-kot/stager/internal/core/queue"
	"github.com/hay-kot/stager/internal/core/styles"
)

// Reviewer is the session the review screen drives. *labeler.Session
// satisfies it.
type Reviewer interface {
	Current() (queue.Item, bool)
	Label(category string) error
	Skip()
	Back()
	Save() error
	Status() string
	Dirty() bool
	Path() string
	Lenient() bool
}

// Options configures the review screen.
type Options struct {
	Keybindings map[string][]string
	Wrap        bool
	Sidebar     bool
	Theme       string
}

// labelDoneMsg and saveDoneMsg carry the result of engine calls that run off
// the update loop.
type (
	labelDoneMsg struct{ err error }
	saveDoneMsg  struct{ err error }
)

// snapshot is what the screen shows. It is refreshed only from Update, never
// while an engine call is in flight, so View never reads the session
// concurrently with a write.
type snapshot struct {
	item   queue.Item
	has    bool
	status string
	dirty  bool
}

// Model is the review screen.
type Model struct {
	reviewer Reviewer
	keys     KeyMap
	styles   styles.Styles
	help     help.Model
	viewport viewport.Model

	wrap    bool
	sidebar bool
	width   int
	height  int

	snap        snapshot
	lastErr     error
	busy        bool // an engine call is running; input is ignored
	quitAfter   bool // quit was pressed while busy
	confirmQuit bool // quit was pressed once with unsaved labels
	quitting    bool
}

// New creates the review screen for r.
func New(r Reviewer, opts Options) Model {
	m := Model{
		reviewer: r,
		keys:     NewKeyMap(opts.Keybindings),
		styles:   styles.ForTheme(opts.Theme),
		help:     help.New(),
		viewport: viewport.New(80, 10),
		wrap:     opts.Wrap,
		sidebar:  opts.Sidebar,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case labelDoneMsg:
		return m.finish(msg.err, true)

	case saveDoneMsg:
		return m.finish(msg.err, false)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		switch {
		case m.busy:
			m.quitAfter = true
			return m, nil
		case m.snap.dirty && !m.confirmQuit:
			m.confirmQuit = true
			return m, nil
		default:
			m.quitting = true
			return m, tea.Quit
		}
	}
	m.confirmQuit = false

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.viewport.SetYOffset(m.viewport.YOffset - max(m.viewport.Height/2, 1))
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.SetYOffset(m.viewport.YOffset + max(m.viewport.Height/2, 1))
		return m, nil
	case key.Matches(msg, m.keys.Skip):
		m.reviewer.Skip()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.reviewer.Back()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.busy = true
		return m, m.saveCmd()
	}

	for _, lb := range m.keys.Labels {
		if key.Matches(msg, lb.Binding) {
			if !m.snap.has {
				return m, nil
			}
			m.busy = true
			return m, m.labelCmd(lb.Category)
		}
	}

	return m, nil
}

func (m Model) labelCmd(category string) tea.Cmd {
	r := m.reviewer
	return func() tea.Msg {
		return labelDoneMsg{err: r.Label(category)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	r := m.reviewer
	return func() tea.Msg {
		return saveDoneMsg{err: r.Save()}
	}
}

// finish applies the result of an engine call.
func (m Model) finish(err error, labeled bool) (tea.Model, tea.Cmd) {
	m.busy = false
	m.lastErr = err
	if err != nil {
		log := logging.Component("tui")
		log.Debug().Err(err).Bool("label", labeled).Msg("engine call failed")
	}

	m.refresh()
	if labeled {
		m.viewport.GotoTop()
	}

	if m.quitAfter {
		m.quitAfter = false
		if m.snap.dirty {
			m.confirmQuit = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// refresh re-reads the session into the snapshot.
func (m *Model) refresh() {
	item, ok := m.reviewer.Current()
	m.snap = snapshot{
		item:   item,
		has:    ok,
		status: m.reviewer.Status(),
		dirty:  m.reviewer.Dirty(),
	}
	m.layout()
}
