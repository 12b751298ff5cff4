package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/phase"
)

// keyMap holds the normal-mode bindings. Editing mode forwards keys to the
// intake form and is handled by editingAction.
type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Escape  key.Binding
	Toggle  key.Binding
	Rate    key.Binding
	Merge   key.Binding
	Jump    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Next:    key.NewBinding(key.WithKeys("right", "tab", "l"), key.WithHelp("→/tab", "next phase")),
		Prev:    key.NewBinding(key.WithKeys("left", "shift+tab", "h"), key.WithHelp("←/S-tab", "prev phase")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select / start")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle technique")),
		Rate:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "rate variant")),
		Merge:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "merge variants")),
		Jump:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "jump to phase")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Confirm, k.Merge, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Jump},
		{k.Up, k.Down, k.Confirm, k.Escape},
		{k.Toggle, k.Rate, k.Merge},
		{k.Help, k.Quit},
	}
}

// editingHelp describes the intake form keys.
var editingHelp = []key.Binding{
	key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
	key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "delete word")),
	key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "move cursor")),
	key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// translate turns a key press into an action, or nil when the key means
// nothing in the current mode.
func (k keyMap) translate(msg tea.KeyMsg, st *app.State) action.Action {
	if msg.Type == tea.KeyCtrlC {
		return action.Quit{}
	}
	if st.InputMode() == action.ModeEditing {
		return editingAction(msg)
	}

	switch {
	case key.Matches(msg, k.Quit):
		return action.Quit{}
	case key.Matches(msg, k.Help):
		return action.ToggleHelp{}
	case key.Matches(msg, k.Next):
		return action.NextPhase{}
	case key.Matches(msg, k.Prev):
		return action.PrevPhase{}
	case key.Matches(msg, k.Up):
		return action.ScrollUp{}
	case key.Matches(msg, k.Down):
		return action.ScrollDown{}
	case key.Matches(msg, k.Confirm):
		return action.Confirm{}
	case key.Matches(msg, k.Escape):
		return action.Escape{}
	case key.Matches(msg, k.Merge):
		return action.OpenMergeDialog{}
	case key.Matches(msg, k.Rate):
		if st.Phase == phase.Benchmark {
			return action.RateSelected{}
		}
	case key.Matches(msg, k.Toggle):
		if st.Phase == phase.Techniques {
			return action.ToggleTechnique{Index: st.Techniques.Selected}
		}
	case key.Matches(msg, k.Jump):
		if p, ok := phase.FromIndex(int(msg.Runes[0] - '1')); ok {
			return action.GoToPhase{Phase: p}
		}
	}
	return nil
}

func editingAction(msg tea.KeyMsg) action.Action {
	switch msg.Type {
	case tea.KeyCtrlW:
		return action.DeleteWord{}
	case tea.KeyCtrlS:
		return action.SubmitForm{}
	case tea.KeyEsc:
		return action.Escape{}
	case tea.KeyTab, tea.KeyShiftTab:
		return action.SwitchField{}
	case tea.KeyEnter:
		if msg.Alt {
			return action.SubmitForm{}
		}
		return action.Newline{}
	case tea.KeyUp:
		return action.ScrollUp{}
	case tea.KeyDown:
		return action.ScrollDown{}
	case tea.KeyLeft:
		return action.MoveCursor{Move: action.CursorLeft}
	case tea.KeyRight:
		return action.MoveCursor{Move: action.CursorRight}
	case tea.KeyHome, tea.KeyCtrlA:
		return action.MoveCursor{Move: action.CursorLineStart}
	case tea.KeyEnd, tea.KeyCtrlE:
		return action.MoveCursor{Move: action.CursorLineEnd}
	case tea.KeyBackspace:
		return action.Backspace{}
	case tea.KeySpace:
		return action.CharInput{Rune: ' '}
	case tea.KeyRunes:
		if msg.Paste || len(msg.Runes) > 1 {
			return action.Paste{Text: string(msg.Runes)}
		}
		if len(msg.Runes) == 1 {
			return action.CharInput{Rune: msg.Runes[0]}
		}
	}
	return nil
}
