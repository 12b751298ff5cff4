package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/project"
)

const (
	intakeWidth       = 66
	descriptionHeight = 4
)

// newIntake builds the form with both fields prefilled and the path focused.
func newIntake(path, description string) IntakeState {
	pi := textinput.New()
	pi.Prompt = ""
	pi.Placeholder = "/path/to/project"
	pi.CharLimit = 0
	pi.Cursor.SetMode(cursor.CursorStatic)
	pi.SetValue(path)

	di := textarea.New()
	di.Prompt = ""
	di.Placeholder = "e.g. make search ranking faster without losing recall"
	di.ShowLineNumbers = false
	di.CharLimit = 0
	di.SetWidth(intakeWidth)
	di.SetHeight(descriptionHeight)
	di.Cursor.SetMode(cursor.CursorStatic)
	di.SetValue(description)

	s := IntakeState{PathInput: pi, DescriptionInput: di}
	s.focusField(action.FieldPath)
	return s
}

// Path returns the path field's current text.
func (s *IntakeState) Path() string { return s.PathInput.Value() }

// Description returns the description field's current text.
func (s *IntakeState) Description() string { return s.DescriptionInput.Value() }

// setValues replaces both fields, leaving the cursors at the end.
func (s *IntakeState) setValues(path, description string) {
	s.PathInput.SetValue(path)
	s.DescriptionInput.SetValue(description)
}

// focusField moves keyboard focus. Only the focused model accepts keys.
func (s *IntakeState) focusField(f action.Field) {
	s.Focus = f
	if f == action.FieldDescription {
		s.PathInput.Blur()
		s.DescriptionInput.Focus()
		return
	}
	s.DescriptionInput.Blur()
	s.PathInput.Focus()
}

func (s *IntakeState) blur() {
	s.PathInput.Blur()
	s.DescriptionInput.Blur()
}

// key feeds msg to the focused model.
func (s *IntakeState) key(msg tea.KeyMsg) {
	if s.Focus == action.FieldDescription {
		s.DescriptionInput, _ = s.DescriptionInput.Update(msg)
		return
	}
	s.PathInput, _ = s.PathInput.Update(msg)
}

func (s *IntakeState) insert(text string) {
	if s.Focus == action.FieldPath {
		// the path is a single line
		if i := strings.IndexAny(text, "\r\n"); i >= 0 {
			text = text[:i]
		}
	}
	if text == "" {
		return
	}
	runes := []rune(text)
	s.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: runes, Paste: len(runes) > 1})
}

// newline breaks the description; in the path field it moves on to the
// description once a path is entered.
func (s *IntakeState) newline() {
	if s.Focus == action.FieldDescription {
		s.key(tea.KeyMsg{Type: tea.KeyEnter})
		return
	}
	if strings.TrimSpace(s.Path()) != "" {
		s.focusField(action.FieldDescription)
	}
}

func (s *IntakeState) switchField() {
	if s.Focus == action.FieldPath {
		s.focusField(action.FieldDescription)
	} else {
		s.focusField(action.FieldPath)
	}
}

var cursorKeys = map[action.CursorMove]tea.KeyType{
	action.CursorLeft:      tea.KeyLeft,
	action.CursorRight:     tea.KeyRight,
	action.CursorLineStart: tea.KeyHome,
	action.CursorLineEnd:   tea.KeyEnd,
}

// submit validates the form. On success it returns the normalized intake
// and marks the form as analyzing.
func (s *IntakeState) submit() (project.Intake, error) {
	in, err := project.Intake{Path: s.Path(), Description: s.Description()}.Validate()
	if err != nil {
		s.Err = errors.UserMessage(err)
		return in, err
	}
	s.Analyzing = true
	s.Err = ""
	s.Request = in.Description
	s.blur()
	return in, nil
}

// handleEdit applies a text-editing action. It reports whether a was one.
func (s *IntakeState) handleEdit(a action.Action) bool {
	// Focus is dropped while analyzing; take it back on the first edit.
	s.focusField(s.Focus)

	switch a := a.(type) {
	case action.CharInput:
		s.insert(string(a.Rune))
	case action.Paste:
		s.insert(a.Text)
	case action.Backspace:
		s.key(tea.KeyMsg{Type: tea.KeyBackspace})
	case action.DeleteWord:
		s.key(tea.KeyMsg{Type: tea.KeyCtrlW})
	case action.MoveCursor:
		if k, ok := cursorKeys[a.Move]; ok {
			s.key(tea.KeyMsg{Type: k})
		}
	case action.Newline:
		s.newline()
	case action.SwitchField:
		s.switchField()
	default:
		return false
	}
	return true
}
