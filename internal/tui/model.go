// Package tui is the terminal front end. It drains the session bus on the
// bubbletea goroutine, so state is only ever read and written there.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/tui/styles"
)

// actionMsg carries one action off the bus. ok is false once the bus is
// closed and drained.
type actionMsg struct {
	action action.Action
	ok     bool
}

// Model is the bubbletea model wrapping a session.
type Model struct {
	session *app.Session
	ctx     context.Context
	styles  *styles.ThemedStyles
	keys    keyMap
	help    help.Model

	width  int
	height int
}

// NewModel builds the model. The theme is read from the session's config.
func NewModel(ctx context.Context, session *app.Session) Model {
	st := styles.ForTheme(session.App.Config().TUI.Theme)

	h := help.New()
	h.Styles.ShortKey = st.HelpKey
	h.Styles.ShortDesc = st.HelpDesc
	h.Styles.FullKey = st.HelpKey
	h.Styles.FullDesc = st.HelpDesc

	return Model{
		session: session,
		ctx:     ctx,
		styles:  st,
		keys:    defaultKeyMap(),
		help:    h,
	}
}

// Init starts draining the bus.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next action. It is re-armed after every delivery.
func (m Model) listen() tea.Cmd {
	b := m.session.Bus
	ctx := m.ctx
	return func() tea.Msg {
		a, ok := b.Next(ctx)
		return actionMsg{action: a, ok: ok}
	}
}

// Update handles bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		m.session.App.Process(msg.action)
		if cfg, ok := msg.action.(action.ConfigReloaded); ok && cfg.Config != nil {
			m.styles = styles.ForTheme(cfg.Config.TUI.Theme)
		}
		if m.session.App.Quitting() {
			return m, tea.Quit
		}
		return m, m.listen()

	case tea.KeyMsg:
		// Keys go through the bus so they stay ordered with collaborator
		// results.
		if a := m.keys.translate(msg, m.session.App.State); a != nil {
			m.session.Bus.Send(a)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}
