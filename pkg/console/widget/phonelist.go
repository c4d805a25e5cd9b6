package widget

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bizdesk/internal/phone"
	"github.com/marcus/bizdesk/pkg/console/modal"
	"github.com/marcus/bizdesk/pkg/console/mouse"
)

// PhoneListText holds the localized strings of a PhoneList.
type PhoneListText struct {
	NewNumber string
	Type      string
	Notes     string
	Add       string
	Primary   string
	Empty     string
	Invalid   string
	Hint      string
	TypeName  func(phone.Type) string
}

// DefaultPhoneListText returns English strings.
func DefaultPhoneListText() PhoneListText {
	return PhoneListText{
		NewNumber: "New number",
		Type:      "Type",
		Notes:     "Notes",
		Add:       "Add",
		Primary:   "primary",
		Empty:     "No phone numbers",
		Invalid:   "Enter a valid phone number",
		Hint:      "p primary · t type · x remove",
		TypeName:  func(t phone.Type) string { return string(t) },
	}
}

// PhoneList edits a list of phone entries. Rows take p (or space) to make
// an entry primary, t to cycle its type and x to remove it; the inputs
// below the rows add a new entry.
type PhoneList struct {
	Frame
	ID       string
	OnChange func(phone.List)

	entries phone.List
	table   *phone.Table
	text    PhoneListText

	number *PhoneInput
	kind   *Select
	notes  *TextField
	add    modal.Section
}

// NewPhoneList returns an editor over entries.
func NewPhoneList(id, label string, entries phone.List, defaultISO string, handler *mouse.Handler, text PhoneListText, onChange func(phone.List), opts ...PhoneOption) *PhoneList {
	l := &PhoneList{
		Frame:    Frame{Label: label},
		ID:       id,
		OnChange: onChange,
		entries:  entries.Normalize(),
		table:    phone.Default(),
		text:     text,
	}
	if l.text.TypeName == nil {
		l.text.TypeName = func(t phone.Type) string { return string(t) }
	}
	l.number = NewPhoneInput(id+":new", text.NewNumber, "", defaultISO, handler, nil, opts...)
	l.table = l.number.table

	types := make([]Option, 0, len(phone.AllTypes()))
	for _, t := range phone.AllTypes() {
		types = append(types, Option{Value: string(t), Label: l.text.TypeName(t)})
	}
	l.kind = NewSelect(id+":newtype", text.Type, string(phone.TypeMobile), "", types, nil)
	l.notes = NewTextField(id+":notes", text.Notes, "", nil)
	l.add = modal.Buttons(modal.Btn(text.Add, id+":add"))
	return l
}

// Entries returns the current list.
func (l *PhoneList) Entries() phone.List { return l.entries }

// SetAlign aligns labels of the editor and its inputs.
func (l *PhoneList) SetAlign(pos lipgloss.Position) {
	l.Align = pos
	l.number.SetAlign(pos)
	l.kind.SetAlign(pos)
	l.notes.SetAlign(pos)
}

// Dispose closes the nested country picker.
func (l *PhoneList) Dispose() {
	l.number.Dispose()
}

func (l *PhoneList) rowID(i int) string { return l.ID + ":row:" + strconv.Itoa(i) }

func (l *PhoneList) rowIndex(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, l.ID+":row:")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || i >= len(l.entries) {
		return 0, false
	}
	return i, true
}

func (l *PhoneList) set(entries phone.List) {
	l.entries = entries
	if l.OnChange != nil {
		l.OnChange(entries)
	}
}

// Add validates the pending number and appends it.
func (l *PhoneList) Add() bool {
	value := l.number.Value()
	if value == "" || !l.table.Valid(value) {
		l.number.SetError(l.text.Invalid)
		return false
	}
	l.number.SetError("")
	l.set(l.entries.Add(phone.Entry{
		Number: value,
		Type:   phone.Type(l.kind.Value()),
		Notes:  strings.TrimSpace(l.notes.Value()),
	}))
	l.number.SetValue("")
	l.notes.SetValue("")
	return true
}

func (l *PhoneList) renderRows(width int, focusID, hoverID string) modal.RenderedSection {
	if len(l.entries) == 0 {
		return modal.RenderedSection{Content: modal.MutedText.Render(l.text.Empty)}
	}
	lines := make([]string, 0, len(l.entries))
	focusables := make([]modal.FocusableInfo, 0, len(l.entries))
	for i, e := range l.entries {
		id := l.rowID(i)
		mark := "  "
		if e.IsPrimary {
			mark = "★ "
		}
		line := fmt.Sprintf("%s%s  %s", mark, e.Number, l.text.TypeName(e.Type))
		if e.IsPrimary {
			line += " (" + l.text.Primary + ")"
		}
		if e.Notes != "" {
			line += "  " + e.Notes
		}
		style := modal.ListItemNormal
		switch {
		case focusID == id:
			style = modal.ListItemFocused
		case hoverID == id:
			style = modal.ListItemSelected
		}
		lines = append(lines, style.Render(ansi.Truncate(line, width, "…")))
		focusables = append(focusables, modal.FocusableInfo{ID: id, OffsetY: i, Width: width, Height: 1})
	}
	if owns(l.ID+":row", focusID) {
		lines = append(lines, modal.MutedText.Render(ansi.Truncate(l.text.Hint, width, "…")))
	}
	return modal.RenderedSection{Content: strings.Join(lines, "\n"), Focusables: focusables}
}

func (l *PhoneList) Render(contentWidth int, focusID, hoverID string) modal.RenderedSection {
	focused := owns(l.ID, focusID)
	rows := modal.Custom(func(w int, f, h string) modal.RenderedSection {
		return l.renderRows(w, f, h)
	}, nil)
	header := modal.Text(l.labelLine(contentWidth, focused))
	out := stack(contentWidth, focusID, hoverID, header, rows, l.number, l.kind, l.notes, l.add)
	if e := l.errorLine(contentWidth); e != "" {
		out.Content += "\n" + e
	}
	return out
}

func (l *PhoneList) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if click, ok := msg.(modal.ClickMsg); ok {
		if _, isRow := l.rowIndex(click.ID); isRow {
			return "", nil
		}
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if i, isRow := l.rowIndex(focusID); isRow {
			return l.rowKey(i, key.String())
		}
		if key.String() == "enter" && l.pendingInput(focusID) {
			l.Add()
			return modal.FocusAction(l.number.ID), nil
		}
	}

	action, cmd := route(msg, focusID, map[string]modal.Section{
		l.number.ID:   l.number,
		l.kind.ID:     l.kind,
		l.notes.ID:    l.notes,
		l.ID + ":add": l.add,
	}, l.number, l.kind, l.notes, l.add)
	if action == l.ID+":add" {
		l.Add()
		return modal.FocusAction(l.number.ID), cmd
	}
	return action, cmd
}

// pendingInput reports whether focus is on a new-entry input where Enter
// adds the entry (the open country picker keeps Enter for itself).
func (l *PhoneList) pendingInput(focusID string) bool {
	switch focusID {
	case l.number.ID:
		return !l.number.IsOpen()
	case l.kind.ID, l.notes.ID:
		return true
	}
	return false
}

func (l *PhoneList) rowKey(i int, key string) (string, tea.Cmd) {
	switch key {
	case "p", " ":
		l.set(l.entries.SetPrimary(i))
	case "t":
		e := l.entries[i]
		e.Type = e.Type.Next()
		l.set(l.entries.Update(i, e))
	case "x", "delete", "backspace":
		l.set(l.entries.Remove(i))
		if len(l.entries) == 0 {
			return modal.FocusAction(l.number.ID), nil
		}
		return modal.FocusAction(l.rowID(min(i, len(l.entries)-1))), nil
	}
	return "", nil
}

// CapturesKey keeps Enter for the add flow and forwards picker captures.
func (l *PhoneList) CapturesKey(focusID, key string) bool {
	if l.number.CapturesKey(focusID, key) {
		return true
	}
	return owns(l.ID, focusID) && key == "enter"
}
