// Package widget holds the form controls used inside console modals. Every
// widget is a modal.Section and reports edits through a plain value
// callback.
package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// Frame is the label and error chrome shared by all widgets.
type Frame struct {
	Label    string
	Required bool
	Err      string
	Align    lipgloss.Position
}

// SetError sets or clears the error line.
func (f *Frame) SetError(msg string) { f.Err = msg }

// Error returns the error line.
func (f *Frame) Error() string { return f.Err }

// SetAlign sets label alignment (right for RTL languages).
func (f *Frame) SetAlign(pos lipgloss.Position) { f.Align = pos }

func (f *Frame) labelLine(width int, focused bool) string {
	label := f.Label
	if f.Required {
		label += " *"
	}
	style := modal.Label
	if focused {
		style = modal.LabelFocus
	}
	return style.Width(width).Align(f.Align).Render(ansi.Truncate(label, width, "…"))
}

func (f *Frame) errorLine(width int) string {
	if f.Err == "" {
		return ""
	}
	return modal.ErrorText.Width(width).Align(f.Align).Render(ansi.Truncate(f.Err, width, "…"))
}

// compose stacks label, body and error lines. It returns the content and the
// row at which body starts.
func (f *Frame) compose(width int, focused bool, body string) (string, int) {
	lines := []string{f.labelLine(width, focused), body}
	if e := f.errorLine(width); e != "" {
		lines = append(lines, e)
	}
	return strings.Join(lines, "\n"), 1
}

// newInput returns a textinput with a static cursor and no prompt.
func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func syncFocus(in *textinput.Model, focused bool) {
	if focused && !in.Focused() {
		in.Focus()
	} else if !focused && in.Focused() {
		in.Blur()
	}
}

// inputBox renders an input padded to width.
func inputBox(in textinput.Model, width int, focused bool) string {
	in.Width = max(1, width-1)
	style := lipgloss.NewStyle().Background(lipgloss.Color("236"))
	if focused {
		style = style.Background(lipgloss.Color("238"))
	}
	view := in.View()
	if pad := width - lipgloss.Width(view); pad > 0 {
		view += strings.Repeat(" ", pad)
	}
	return style.Render(ansi.Truncate(view, width, ""))
}

// owns reports whether region id belongs to widget id.
func owns(widgetID, regionID string) bool {
	return regionID == widgetID || strings.HasPrefix(regionID, widgetID+":")
}
