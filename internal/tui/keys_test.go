package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/project"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTranslateNormalMode(t *testing.T) {
	keys := defaultKeyMap()

	tests := []struct {
		name  string
		phase phase.Phase
		msg   tea.KeyMsg
		want  action.Action
	}{
		{"q quits", phase.Research, runes("q"), action.Quit{}},
		{"ctrl+c quits", phase.Research, tea.KeyMsg{Type: tea.KeyCtrlC}, action.Quit{}},
		{"help", phase.Research, runes("?"), action.ToggleHelp{}},
		{"right", phase.Research, tea.KeyMsg{Type: tea.KeyRight}, action.NextPhase{}},
		{"tab", phase.Research, tea.KeyMsg{Type: tea.KeyTab}, action.NextPhase{}},
		{"shift+tab", phase.Research, tea.KeyMsg{Type: tea.KeyShiftTab}, action.PrevPhase{}},
		{"j", phase.Research, runes("j"), action.ScrollDown{}},
		{"up", phase.Research, tea.KeyMsg{Type: tea.KeyUp}, action.ScrollUp{}},
		{"enter", phase.Research, tea.KeyMsg{Type: tea.KeyEnter}, action.Confirm{}},
		{"esc", phase.Research, tea.KeyMsg{Type: tea.KeyEsc}, action.Escape{}},
		{"merge", phase.Generation, runes("m"), action.OpenMergeDialog{}},
		{"jump", phase.Research, runes("4"), action.GoToPhase{Phase: phase.Generation}},
		{"space toggles in techniques", phase.Techniques, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, action.ToggleTechnique{Index: 0}},
		{"space elsewhere", phase.Research, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, nil},
		{"rate in benchmark", phase.Benchmark, runes("s"), action.RateSelected{}},
		{"rate elsewhere", phase.Generation, runes("s"), nil},
		{"unbound", phase.Research, runes("z"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := app.NewState("", "")
			st.Intake.Profile = &project.Profile{Path: "/p"}
			st.Phase = tt.phase
			if got := keys.translate(tt.msg, st); got != tt.want {
				t.Errorf("translate(%q) = %#v, want %#v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestTranslateEditingMode(t *testing.T) {
	keys := defaultKeyMap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want action.Action
	}{
		{"letters are text", runes("q"), action.CharInput{Rune: 'q'}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, action.CharInput{Rune: ' '}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a b"), Paste: true}, action.Paste{Text: "a b"}},
		{"burst", runes("abc"), action.Paste{Text: "abc"}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, action.Backspace{}},
		{"ctrl+w", tea.KeyMsg{Type: tea.KeyCtrlW}, action.DeleteWord{}},
		{"ctrl+s", tea.KeyMsg{Type: tea.KeyCtrlS}, action.SubmitForm{}},
		{"alt+enter", tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, action.SubmitForm{}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, action.Newline{}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, action.SwitchField{}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, action.Escape{}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, action.Quit{}},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, action.ScrollDown{}},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, action.MoveCursor{Move: action.CursorLeft}},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, action.MoveCursor{Move: action.CursorRight}},
		{"ctrl+a", tea.KeyMsg{Type: tea.KeyCtrlA}, action.MoveCursor{Move: action.CursorLineStart}},
		{"end", tea.KeyMsg{Type: tea.KeyEnd}, action.MoveCursor{Move: action.CursorLineEnd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := app.NewState("", "")
			if st.InputMode() != action.ModeEditing {
				t.Fatal("fresh state should be editing")
			}
			if got := keys.translate(tt.msg, st); got != tt.want {
				t.Errorf("translate(%q) = %#v, want %#v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		selected, n, rows int
		start, end        int
	}{
		{0, 3, 10, 0, 3},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := window(tt.selected, tt.n, tt.rows)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tt.selected, tt.n, tt.rows, start, end, tt.start, tt.end)
		}
	}
}
