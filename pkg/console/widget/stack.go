package widget

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// stack renders sections top to bottom as one block, shifting each
// section's focusables by the rows above it.
func stack(width int, focusID, hoverID string, sections ...modal.Section) modal.RenderedSection {
	var (
		parts []string
		out   modal.RenderedSection
		row   int
	)
	for _, s := range sections {
		r := s.Render(width, focusID, hoverID)
		if r.Content == "" {
			continue
		}
		for _, f := range r.Focusables {
			f.OffsetY += row
			out.Focusables = append(out.Focusables, f)
		}
		parts = append(parts, r.Content)
		row += strings.Count(r.Content, "\n") + 1
	}
	out.Content = strings.Join(parts, "\n")
	return out
}

// route forwards msg to the sections that own the target element, or to
// all of them for messages without a target.
func route(msg tea.Msg, focusID string, owners map[string]modal.Section, sections ...modal.Section) (string, tea.Cmd) {
	target := focusID
	switch m := msg.(type) {
	case modal.ClickMsg:
		target = m.ID
	case modal.WheelMsg:
		target = m.ID
	case tea.KeyMsg:
	default:
		var cmds []tea.Cmd
		for _, s := range sections {
			if _, cmd := s.Update(msg, focusID); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return "", tea.Batch(cmds...)
	}
	for prefix, s := range owners {
		if owns(prefix, target) {
			return s.Update(msg, focusID)
		}
	}
	return "", nil
}
