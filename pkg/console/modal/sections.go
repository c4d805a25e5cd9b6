package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextOption configures a Text section.
type TextOption func(*textSection)

// TextStyle sets the text style.
func TextStyle(st lipgloss.Style) TextOption {
	return func(s *textSection) { s.style = st }
}

// TextAlign sets the horizontal alignment within the content width.
func TextAlign(pos lipgloss.Position) TextOption {
	return func(s *textSection) { s.align = pos }
}

type textSection struct {
	text  string
	style lipgloss.Style
	align lipgloss.Position
}

// Text renders static text wrapped to the content width.
func Text(text string, opts ...TextOption) Section {
	s := &textSection{text: text, style: Body, align: lipgloss.Left}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *textSection) Render(contentWidth int, _, _ string) RenderedSection {
	if s.text == "" {
		return RenderedSection{}
	}
	return RenderedSection{
		Content: s.style.Width(contentWidth).Align(s.align).Render(s.text),
	}
}

func (s *textSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

type spacerSection struct{}

// Spacer renders one blank line.
func Spacer() Section { return spacerSection{} }

func (spacerSection) Render(int, string, string) RenderedSection {
	return RenderedSection{Content: " "}
}

func (spacerSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

// ButtonDef is one button in a Buttons row.
type ButtonDef struct {
	Label     string
	ID        string
	danger    bool
	disabled  func() bool
	busy      func() bool
	busyLabel string
}

// ButtonOption configures a button.
type ButtonOption func(*ButtonDef)

// BtnDanger styles the button as destructive.
func BtnDanger() ButtonOption {
	return func(b *ButtonDef) { b.danger = true }
}

// BtnDisabled disables the button while cond holds.
func BtnDisabled(cond func() bool) ButtonOption {
	return func(b *ButtonDef) { b.disabled = cond }
}

// BtnBusy disables the button and swaps its label while cond holds.
func BtnBusy(cond func() bool, label string) ButtonOption {
	return func(b *ButtonDef) {
		b.busy = cond
		b.busyLabel = label
	}
}

// Btn creates a button.
func Btn(label, id string, opts ...ButtonOption) ButtonDef {
	b := ButtonDef{Label: label, ID: id}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b ButtonDef) isBusy() bool {
	return b.busy != nil && b.busy()
}

// Disabled reports whether the button currently ignores activation.
func (b ButtonDef) Disabled() bool {
	return b.isBusy() || (b.disabled != nil && b.disabled())
}

func (b ButtonDef) label() string {
	if b.isBusy() && b.busyLabel != "" {
		return b.busyLabel
	}
	return b.Label
}

type buttonsSection struct {
	buttons []ButtonDef
	align   lipgloss.Position
}

// Buttons renders a row of buttons. Activating one returns its id.
func Buttons(btns ...ButtonDef) Section {
	return &buttonsSection{buttons: btns, align: lipgloss.Left}
}

// ButtonsAligned renders a button row aligned within the content width.
func ButtonsAligned(pos lipgloss.Position, btns ...ButtonDef) Section {
	return &buttonsSection{buttons: btns, align: pos}
}

func (s *buttonsSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	rendered := make([]string, len(s.buttons))
	total := 0
	for i, b := range s.buttons {
		rendered[i] = s.style(b, focusID, hoverID).Render(b.label())
		total += lipgloss.Width(rendered[i])
	}
	total += 2 * max(0, len(s.buttons)-1)

	x := 0
	switch s.align {
	case lipgloss.Right:
		x = max(0, contentWidth-total)
	case lipgloss.Center:
		x = max(0, (contentWidth-total)/2)
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", x))
	focusables := make([]FocusableInfo, 0, len(s.buttons))
	for i, b := range s.buttons {
		if i > 0 {
			sb.WriteString("  ")
			x += 2
		}
		w := lipgloss.Width(rendered[i])
		sb.WriteString(rendered[i])
		focusables = append(focusables, FocusableInfo{
			ID:      b.ID,
			OffsetX: x,
			Width:   w,
			Height:  1,
			Passive: b.Disabled(),
		})
		x += w
	}
	return RenderedSection{Content: sb.String(), Focusables: focusables}
}

func (s *buttonsSection) style(b ButtonDef, focusID, hoverID string) lipgloss.Style {
	switch {
	case b.Disabled():
		return ButtonDisabled
	case b.danger && b.ID == focusID:
		return ButtonDangerFocused
	case b.danger && b.ID == hoverID:
		return ButtonDangerHover
	case b.danger:
		return ButtonDanger
	case b.ID == focusID:
		return ButtonFocused
	case b.ID == hoverID:
		return ButtonHover
	}
	return Button
}

func (s *buttonsSection) find(id string) (ButtonDef, bool) {
	for _, b := range s.buttons {
		if b.ID == id {
			return b, true
		}
	}
	return ButtonDef{}, false
}

func (s *buttonsSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	var id string
	switch msg := msg.(type) {
	case ClickMsg:
		id = msg.ID
	case tea.KeyMsg:
		if k := msg.String(); k != "enter" && k != " " {
			return "", nil
		}
		id = focusID
	default:
		return "", nil
	}
	b, ok := s.find(id)
	if !ok || b.Disabled() {
		return "", nil
	}
	return b.ID, nil
}

// RenderFunc renders custom content.
type RenderFunc func(contentWidth int, focusID, hoverID string) RenderedSection

// UpdateFunc handles messages for custom content.
type UpdateFunc func(msg tea.Msg, focusID string) (string, tea.Cmd)

type customSection struct {
	render RenderFunc
	update UpdateFunc
}

// Custom wraps arbitrary render and update functions. update may be nil.
func Custom(render RenderFunc, update UpdateFunc) Section {
	return &customSection{render: render, update: update}
}

func (s *customSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	return s.render(contentWidth, focusID, hoverID)
}

func (s *customSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if s.update == nil {
		return "", nil
	}
	return s.update(msg, focusID)
}

type whenSection struct {
	cond    func() bool
	section Section
}

// When renders section only while cond holds.
func When(cond func() bool, section Section) Section {
	return &whenSection{cond: cond, section: section}
}

func (s *whenSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if !s.cond() {
		return RenderedSection{}
	}
	return s.section.Render(contentWidth, focusID, hoverID)
}

func (s *whenSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if !s.cond() {
		return "", nil
	}
	return s.section.Update(msg, focusID)
}

func (s *whenSection) CapturesKey(focusID, key string) bool {
	if c, ok := s.section.(KeyCapturer); ok && s.cond() {
		return c.CapturesKey(focusID, key)
	}
	return false
}
