package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/marcus/bizdesk/internal/phone"
	"github.com/marcus/bizdesk/pkg/console/modal"
	"github.com/marcus/bizdesk/pkg/console/mouse"
)

const dropdownRows = 6

// CountryNamer returns the display name of a country in the UI language.
type CountryNamer func(phone.Country) string

// PhoneInput edits a composed "+<dial><digits>" number with a country
// picker. While the picker is open it listens for presses anywhere on the
// screen and closes itself when one lands outside its own regions.
type PhoneInput struct {
	Frame
	ID       string
	OnChange func(string)

	table      *phone.Table
	defaultISO string
	namer      CountryNamer
	handler    *mouse.Handler

	country phone.Country
	digits  textinput.Model

	open     bool
	filter   textinput.Model
	matches  []phone.Country
	selected int
	list     *modal.ListSection
}

// PhoneOption configures a phone input.
type PhoneOption func(*PhoneInput)

// WithCountryNamer localizes country names in the picker.
func WithCountryNamer(fn CountryNamer) PhoneOption {
	return func(p *PhoneInput) { p.namer = fn }
}

// WithTable replaces the embedded country table.
func WithTable(t *phone.Table) PhoneOption {
	return func(p *PhoneInput) { p.table = t }
}

// NewPhoneInput returns a phone input seeded from value. defaultISO picks
// the country when value carries no known dial code. handler receives the
// outside-press listener while the picker is open.
func NewPhoneInput(id, label, value, defaultISO string, handler *mouse.Handler, onChange func(string), opts ...PhoneOption) *PhoneInput {
	p := &PhoneInput{
		Frame:      Frame{Label: label},
		ID:         id,
		OnChange:   onChange,
		table:      phone.Default(),
		defaultISO: defaultISO,
		handler:    handler,
		digits:     newInput("5xxxxxxxx"),
		filter:     newInput("search"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.namer == nil {
		p.namer = func(c phone.Country) string { return c.Name }
	}
	p.list = modal.List(p.listID(), nil, &p.selected, modal.WithMaxVisible(dropdownRows), modal.WithEmptyText("no match"))
	p.SetValue(value)
	return p
}

func (p *PhoneInput) triggerID() string { return p.ID + ":country" }
func (p *PhoneInput) filterID() string  { return p.ID + ":filter" }
func (p *PhoneInput) listID() string    { return p.ID + ":list" }
func (p *PhoneInput) listenerID() string {
	return p.ID + ":outside"
}

// SetValue reseeds the widget without emitting a change.
func (p *PhoneInput) SetValue(value string) {
	parts := p.table.Split(value, p.defaultISO)
	p.country = parts.Country
	p.digits.SetValue(parts.Digits)
}

// Value returns the composed number, or "" when no digits were entered.
func (p *PhoneInput) Value() string {
	d := phone.Digits(p.digits.Value())
	if d == "" {
		return ""
	}
	return phone.Compose(p.country.Dial, d)
}

// Country returns the selected country.
func (p *PhoneInput) Country() phone.Country {
	return p.country
}

// IsOpen reports whether the country picker is showing.
func (p *PhoneInput) IsOpen() bool {
	return p.open
}

// OpenDropdown shows the picker and starts listening for outside presses.
func (p *PhoneInput) OpenDropdown() {
	if p.open {
		return
	}
	p.open = true
	p.filter.SetValue("")
	p.refilter()
	for i, c := range p.matches {
		if c.ISO == p.country.ISO {
			p.selected = i
			break
		}
	}
	if p.handler != nil {
		p.handler.OnPointerDown(p.listenerID(), func(_, _ int, region *mouse.Region) bool {
			if region != nil && owns(p.ID, region.ID) {
				return false
			}
			p.CloseDropdown()
			return false
		})
	}
}

// CloseDropdown hides the picker and releases the outside listener.
func (p *PhoneInput) CloseDropdown() {
	if !p.open {
		return
	}
	p.open = false
	p.filter.Blur()
	if p.handler != nil {
		p.handler.Release(p.listenerID())
	}
}

// Dispose releases anything the widget registered outside itself.
func (p *PhoneInput) Dispose() {
	p.CloseDropdown()
}

type countrySource struct {
	countries []phone.Country
	namer     CountryNamer
}

func (s countrySource) String(i int) string {
	c := s.countries[i]
	return s.namer(c) + " " + c.ISO + " " + c.Dial
}

func (s countrySource) Len() int { return len(s.countries) }

func (p *PhoneInput) refilter() {
	all := p.table.All()
	pattern := strings.TrimSpace(p.filter.Value())
	if pattern == "" {
		p.matches = all
	} else {
		found := fuzzy.FindFrom(pattern, countrySource{countries: all, namer: p.namer})
		p.matches = make([]phone.Country, 0, len(found))
		for _, m := range found {
			p.matches = append(p.matches, all[m.Index])
		}
	}
	items := make([]modal.ListItem, len(p.matches))
	for i, c := range p.matches {
		items[i] = modal.ListItem{
			ID:    p.ID + ":iso:" + c.ISO,
			Label: c.Flag() + " " + p.namer(c) + " (" + c.Dial + ")",
			Data:  c,
		}
	}
	p.selected = 0
	p.list.SetItems(items)
}

// choose applies a country and keeps the typed digits.
func (p *PhoneInput) choose(c phone.Country) {
	p.country = c
	p.CloseDropdown()
	p.emit()
}

func (p *PhoneInput) emit() {
	if p.OnChange != nil {
		p.OnChange(p.Value())
	}
}

func (p *PhoneInput) Render(contentWidth int, focusID, hoverID string) modal.RenderedSection {
	focused := owns(p.ID, focusID)
	syncFocus(&p.digits, focusID == p.ID)

	trigger := p.country.Flag() + " " + p.country.Dial + " ▾"
	tStyle := modal.Button.Padding(0, 1)
	switch {
	case focusID == p.triggerID() || p.open:
		tStyle = modal.ButtonFocused.Padding(0, 1)
	case hoverID == p.triggerID():
		tStyle = modal.ButtonHover.Padding(0, 1)
	}
	triggerView := tStyle.Render(trigger)
	tw := lipgloss.Width(triggerView)
	inputW := max(4, contentWidth-tw-1)

	row := triggerView + " " + inputBox(p.digits, inputW, focusID == p.ID)
	content, bodyRow := p.compose(contentWidth, focused, row)
	focusables := []modal.FocusableInfo{
		{ID: p.triggerID(), OffsetY: bodyRow, Width: tw, Height: 1},
		{ID: p.ID, OffsetX: tw + 1, OffsetY: bodyRow, Width: inputW, Height: 1},
	}
	if !p.open {
		return modal.RenderedSection{Content: content, Focusables: focusables}
	}

	// the picker opens below the error line, indented under the trigger
	lines := strings.Count(content, "\n") + 1
	syncFocus(&p.filter, focusID == p.filterID())
	filterView := "  " + inputBox(p.filter, contentWidth-2, focusID == p.filterID())
	list := p.list.Render(contentWidth-2, focusID, hoverID)
	listContent := strings.Join(strings.Split(list.Content, "\n"), "\n  ")
	content += "\n" + filterView + "\n  " + listContent

	focusables = append(focusables, modal.FocusableInfo{
		ID: p.filterID(), OffsetX: 2, OffsetY: lines, Width: contentWidth - 2, Height: 1,
	})
	for _, f := range list.Focusables {
		f.OffsetX += 2
		f.OffsetY += lines + 1
		focusables = append(focusables, f)
	}
	return modal.RenderedSection{Content: content, Focusables: focusables}
}

func (p *PhoneInput) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	switch msg := msg.(type) {
	case modal.ClickMsg:
		switch msg.ID {
		case p.triggerID():
			if p.open {
				p.CloseDropdown()
				return modal.FocusAction(p.triggerID()), nil
			}
			p.OpenDropdown()
			return modal.FocusAction(p.filterID()), nil
		case p.listID():
			if id, _ := p.list.Update(msg, focusID); id != "" {
				return p.chooseSelected()
			}
		}
		return "", nil

	case modal.WheelMsg:
		if msg.ID == p.listID() {
			p.list.Update(msg, focusID)
		}
		return "", nil

	case tea.KeyMsg:
		return p.handleKey(msg, focusID)
	}
	return "", nil
}

func (p *PhoneInput) chooseSelected() (string, tea.Cmd) {
	if item, ok := p.list.Selected(); ok {
		if c, ok := item.Data.(phone.Country); ok {
			p.choose(c)
		}
	}
	return modal.FocusAction(p.ID), nil
}

func (p *PhoneInput) handleKey(msg tea.KeyMsg, focusID string) (string, tea.Cmd) {
	key := msg.String()
	switch focusID {
	case p.triggerID():
		switch key {
		case "enter", " ", "down":
			p.OpenDropdown()
			return modal.FocusAction(p.filterID()), nil
		case "esc":
			p.CloseDropdown()
		}
		return "", nil

	case p.filterID(), p.listID():
		switch key {
		case "esc":
			p.CloseDropdown()
			return modal.FocusAction(p.triggerID()), nil
		case "enter":
			return p.chooseSelected()
		case "up", "down", "pgup", "pgdown":
			p.list.Update(msg, p.listID())
			return "", nil
		}
		if focusID == p.listID() {
			p.list.Update(msg, focusID)
			return "", nil
		}
		before := p.filter.Value()
		var cmd tea.Cmd
		p.filter, cmd = p.filter.Update(msg)
		if p.filter.Value() != before {
			p.refilter()
		}
		return "", cmd

	case p.ID:
		before := p.digits.Value()
		var cmd tea.Cmd
		p.digits, cmd = p.digits.Update(msg)
		if after := p.digits.Value(); after != before {
			clean := phone.Digits(after)
			if clean != after {
				p.digits.SetValue(clean)
			}
			if clean != phone.Digits(before) {
				p.emit()
			}
		}
		return "", cmd
	}
	return "", nil
}

// CapturesKey keeps Enter and Esc inside the picker while it is open.
func (p *PhoneInput) CapturesKey(focusID, key string) bool {
	if !owns(p.ID, focusID) {
		return false
	}
	if key == "enter" && focusID == p.triggerID() {
		return true
	}
	return p.open && (key == "enter" || key == "esc")
}
