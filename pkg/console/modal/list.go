package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ListItem is one row of a list section.
type ListItem struct {
	ID    string
	Label string
	Data  any
}

// ListOption configures a list section.
type ListOption func(*ListSection)

// ListSection renders a scrollable list. The list is a single focusable;
// items are chosen with the arrow keys, the wheel or a click.
type ListSection struct {
	id           string
	items        []ListItem
	selectedIdx  *int
	maxVisible   int
	scrollOffset int
	emptyText    string
	indent       int
	// rows before the first item in the last render (scroll indicator)
	topRows int
}

// List creates a list section. selectedIdx is owned by the caller and may
// be nil for a list without selection.
func List(id string, items []ListItem, selectedIdx *int, opts ...ListOption) *ListSection {
	s := &ListSection{
		id:          id,
		items:       items,
		selectedIdx: selectedIdx,
		maxVisible:  5,
		emptyText:   "(no items)",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithMaxVisible sets the number of visible rows.
func WithMaxVisible(n int) ListOption {
	return func(s *ListSection) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

// WithEmptyText sets the placeholder for an empty list.
func WithEmptyText(text string) ListOption {
	return func(s *ListSection) { s.emptyText = text }
}

// WithIndent shifts the list right by n cells.
func WithIndent(n int) ListOption {
	return func(s *ListSection) { s.indent = max(0, n) }
}

// ID returns the list's focusable id.
func (s *ListSection) ID() string { return s.id }

// SetItems replaces the items, keeping the selection in range.
func (s *ListSection) SetItems(items []ListItem) {
	s.items = items
	s.scrollOffset = 0
	if s.selectedIdx != nil {
		*s.selectedIdx = clamp(*s.selectedIdx, 0, max(0, len(items)-1))
	}
}

// Items returns the current items.
func (s *ListSection) Items() []ListItem { return s.items }

// Selected returns the selected item.
func (s *ListSection) Selected() (ListItem, bool) {
	if s.selectedIdx == nil || *s.selectedIdx < 0 || *s.selectedIdx >= len(s.items) {
		return ListItem{}, false
	}
	return s.items[*s.selectedIdx], true
}

func (s *ListSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	pad := strings.Repeat(" ", s.indent)
	width := max(4, contentWidth-s.indent)
	if len(s.items) == 0 {
		return RenderedSection{
			Content:    pad + MutedText.Render(s.emptyText),
			Focusables: []FocusableInfo{{ID: s.id, OffsetX: s.indent, Width: width, Height: 1}},
		}
	}

	visibleCount := min(s.maxVisible, len(s.items))
	selectedIdx := 0
	if s.selectedIdx != nil {
		selectedIdx = *s.selectedIdx
	}

	// keep the selection visible
	if selectedIdx < s.scrollOffset {
		s.scrollOffset = selectedIdx
	} else if selectedIdx >= s.scrollOffset+visibleCount {
		s.scrollOffset = selectedIdx - visibleCount + 1
	}
	s.scrollOffset = clamp(s.scrollOffset, 0, max(0, len(s.items)-visibleCount))

	listIsFocused := focusID == s.id

	lines := make([]string, 0, visibleCount+2)
	s.topRows = 0
	if s.scrollOffset > 0 {
		lines = append(lines, pad+MutedText.Render("↑ more above"))
		s.topRows = 1
	}
	for i := 0; i < visibleCount; i++ {
		itemIdx := s.scrollOffset + i
		if itemIdx >= len(s.items) {
			break
		}
		item := s.items[itemIdx]
		isSelected := s.selectedIdx != nil && *s.selectedIdx == itemIdx

		style := ListItemNormal
		switch {
		case isSelected && listIsFocused:
			style = ListItemFocused
		case isSelected, item.ID == hoverID:
			style = ListItemSelected
		}

		cursor := "  "
		if isSelected {
			cursor = ListCursor.Render("> ")
		}
		lines = append(lines, pad+cursor+style.Render(ansi.Truncate(item.Label, width-2, "…")))
	}
	if s.scrollOffset+visibleCount < len(s.items) {
		lines = append(lines, pad+MutedText.Render("↓ more below"))
	}

	return RenderedSection{
		Content: strings.Join(lines, "\n"),
		Focusables: []FocusableInfo{{
			ID:      s.id,
			OffsetX: s.indent,
			Width:   width,
			Height:  len(lines),
		}},
	}
}

func (s *ListSection) move(delta int) {
	if s.selectedIdx == nil || len(s.items) == 0 {
		return
	}
	*s.selectedIdx = clamp(*s.selectedIdx+delta, 0, len(s.items)-1)
}

func (s *ListSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	switch msg := msg.(type) {
	case ClickMsg:
		if msg.ID != s.id || s.selectedIdx == nil {
			return "", nil
		}
		idx := s.scrollOffset + msg.Y - s.topRows
		if idx < s.scrollOffset || idx >= len(s.items) || idx >= s.scrollOffset+s.maxVisible {
			return "", nil
		}
		*s.selectedIdx = idx
		return s.items[idx].ID, nil

	case WheelMsg:
		if msg.ID != s.id {
			return "", nil
		}
		s.move(msg.Delta)
		return "", nil

	case tea.KeyMsg:
		if focusID != s.id || s.selectedIdx == nil {
			return "", nil
		}
		switch msg.String() {
		case "up", "k":
			s.move(-1)
		case "down", "j":
			s.move(1)
		case "pgup":
			s.move(-s.maxVisible)
		case "pgdown":
			s.move(s.maxVisible)
		case "home":
			*s.selectedIdx = 0
		case "end":
			*s.selectedIdx = max(0, len(s.items)-1)
		case "enter":
			if item, ok := s.Selected(); ok {
				return item.ID, nil
			}
		}
	}
	return "", nil
}

// CapturesKey claims Enter while the list is focused so choosing an item
// does not trigger the modal's primary action.
func (s *ListSection) CapturesKey(focusID, key string) bool {
	return focusID == s.id && key == "enter"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
