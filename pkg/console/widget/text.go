package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// TextField is a single-line input.
type TextField struct {
	Frame
	ID       string
	OnChange func(string)

	input textinput.Model
}

// NewTextField returns a text field holding value.
func NewTextField(id, label, value string, onChange func(string)) *TextField {
	f := &TextField{Frame: Frame{Label: label}, ID: id, OnChange: onChange, input: newInput("")}
	f.input.SetValue(value)
	return f
}

// SetPassword masks the typed characters.
func (f *TextField) SetPassword(on bool) {
	if on {
		f.input.EchoMode = textinput.EchoPassword
		f.input.EchoCharacter = '•'
		return
	}
	f.input.EchoMode = textinput.EchoNormal
}

// SetPlaceholder sets the hint shown while empty.
func (f *TextField) SetPlaceholder(text string) { f.input.Placeholder = text }

// SetCharLimit caps the input length.
func (f *TextField) SetCharLimit(n int) { f.input.CharLimit = n }

// Value returns the text.
func (f *TextField) Value() string { return f.input.Value() }

// SetValue replaces the text without reporting a change.
func (f *TextField) SetValue(v string) { f.input.SetValue(v) }

func (f *TextField) Render(contentWidth int, focusID, _ string) modal.RenderedSection {
	focused := focusID == f.ID
	syncFocus(&f.input, focused)
	content, row := f.compose(contentWidth, focused, inputBox(f.input, contentWidth, focused))
	return modal.RenderedSection{
		Content:    content,
		Focusables: []modal.FocusableInfo{{ID: f.ID, OffsetY: row, Width: contentWidth, Height: 1}},
	}
}

func (f *TextField) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || focusID != f.ID {
		return "", nil
	}
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(key)
	if v := f.input.Value(); v != before && f.OnChange != nil {
		f.OnChange(v)
	}
	return "", cmd
}

// TextArea is a multi-line input. It keeps Enter for new lines.
type TextArea struct {
	Frame
	ID       string
	OnChange func(string)

	area textarea.Model
}

// NewTextArea returns a text area of the given height.
func NewTextArea(id, label, value string, height int, onChange func(string)) *TextArea {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.SetHeight(max(2, height))
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.SetValue(value)
	return &TextArea{Frame: Frame{Label: label}, ID: id, OnChange: onChange, area: ta}
}

// Value returns the text.
func (a *TextArea) Value() string { return a.area.Value() }

func (a *TextArea) Render(contentWidth int, focusID, _ string) modal.RenderedSection {
	focused := focusID == a.ID
	if focused && !a.area.Focused() {
		a.area.Focus()
	} else if !focused && a.area.Focused() {
		a.area.Blur()
	}
	a.area.SetWidth(contentWidth)
	body := a.area.View()
	content, row := a.compose(contentWidth, focused, body)
	return modal.RenderedSection{
		Content: content,
		Focusables: []modal.FocusableInfo{{
			ID: a.ID, OffsetY: row, Width: contentWidth, Height: strings.Count(body, "\n") + 1,
		}},
	}
}

func (a *TextArea) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || focusID != a.ID {
		return "", nil
	}
	before := a.area.Value()
	var cmd tea.Cmd
	a.area, cmd = a.area.Update(key)
	if v := a.area.Value(); v != before && a.OnChange != nil {
		a.OnChange(v)
	}
	return "", cmd
}

// CapturesKey claims Enter so it inserts a line instead of submitting.
func (a *TextArea) CapturesKey(focusID, key string) bool {
	return focusID == a.ID && key == "enter"
}
