package widget

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// Checkbox is a boolean toggle.
type Checkbox struct {
	Frame
	ID       string
	Checked  bool
	OnChange func(bool)
}

// NewCheckbox returns a checkbox.
func NewCheckbox(id, label string, checked bool, onChange func(bool)) *Checkbox {
	return &Checkbox{Frame: Frame{Label: label}, ID: id, Checked: checked, OnChange: onChange}
}

// Toggle flips the value and reports it.
func (c *Checkbox) Toggle() {
	c.Checked = !c.Checked
	if c.OnChange != nil {
		c.OnChange(c.Checked)
	}
}

func (c *Checkbox) Render(contentWidth int, focusID, hoverID string) modal.RenderedSection {
	box := "[ ]"
	if c.Checked {
		box = "[x]"
	}
	style := modal.Label
	if focusID == c.ID {
		style = modal.LabelFocus
	} else if hoverID == c.ID {
		style = modal.ListItemSelected
	}
	line := style.Render(ansi.Truncate(box+" "+c.Label, contentWidth, "…"))
	width := lipgloss.Width(line)
	x := 0
	if c.Align == lipgloss.Right {
		x = max(0, contentWidth-width)
		line = lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Right).Render(line)
	}

	content := line
	if e := c.errorLine(contentWidth); e != "" {
		content += "\n" + e
	}
	return modal.RenderedSection{
		Content:    content,
		Focusables: []modal.FocusableInfo{{ID: c.ID, OffsetX: x, Width: width, Height: 1}},
	}
}

func (c *Checkbox) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	switch msg := msg.(type) {
	case modal.ClickMsg:
		if msg.ID == c.ID {
			c.Toggle()
		}
	case tea.KeyMsg:
		if focusID == c.ID && msg.String() == " " {
			c.Toggle()
		}
	}
	return "", nil
}
