package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bizdesk/pkg/console/mouse"
)

// Reserved action ids.
const (
	// ActionClose is returned for Esc, the close glyph and backdrop clicks.
	ActionClose = "close"
	// ActionBlur is returned by a section to drop modal focus.
	ActionBlur = "blur"

	focusPrefix = "focus:"
)

// FocusAction returns an action that moves modal focus to id.
func FocusAction(id string) string {
	return focusPrefix + id
}

// Hit region ids registered by every open modal.
const (
	RegionBackdrop = "modal:backdrop"
	RegionPanel    = "modal:panel"
	RegionClose    = "modal:close"
)

// panel chrome: one border cell plus padding (1 row, 2 columns)
const (
	chromeX     = 3
	chromeY     = 2
	headerLines = 2
)

// Size is the width class of a modal.
type Size int

const (
	SizeSmall Size = iota
	SizeMedium
	SizeLarge
	SizeXLarge
)

// Width returns the outer panel width for the size.
func (s Size) Width() int {
	switch s {
	case SizeSmall:
		return 44
	case SizeLarge:
		return 76
	case SizeXLarge:
		return 96
	}
	return 60
}

func (s Size) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeLarge:
		return "large"
	case SizeXLarge:
		return "xlarge"
	}
	return "medium"
}

// Variant selects the panel accent.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantWarning
	VariantInfo
	VariantSuccess
)

// FocusableInfo locates an interactive element inside a rendered section.
// Offsets are relative to the section's top-left cell. Passive elements are
// clickable but skipped by Tab.
type FocusableInfo struct {
	ID      string
	OffsetX int
	OffsetY int
	Width   int
	Height  int
	Passive bool
}

// RenderedSection is the output of Section.Render.
type RenderedSection struct {
	Content    string
	Focusables []FocusableInfo
}

// Section is one block of modal content.
type Section interface {
	Render(contentWidth int, focusID, hoverID string) RenderedSection
	Update(msg tea.Msg, focusID string) (string, tea.Cmd)
}

// KeyCapturer is implemented by sections that use Enter or Esc themselves
// (a multiline editor, an open dropdown). A captured Enter suppresses the
// primary action; a captured Esc does not close the modal.
type KeyCapturer interface {
	CapturesKey(focusID, key string) bool
}

// ClickMsg is sent to the section owning a clicked element. X and Y are
// relative to the element.
type ClickMsg struct {
	ID   string
	X, Y int
}

// WheelMsg is sent to the section owning the element under a wheel event.
type WheelMsg struct {
	ID    string
	Delta int // negative is up
}

// Option configures a modal.
type Option func(*Modal)

// WithSize sets the width class.
func WithSize(s Size) Option {
	return func(m *Modal) { m.width = s.Width() }
}

// WithWidth sets an explicit outer width.
func WithWidth(w int) Option {
	return func(m *Modal) {
		if w > 0 {
			m.width = w
		}
	}
}

// WithVariant sets the visual style.
func WithVariant(v Variant) Option {
	return func(m *Modal) { m.variant = v }
}

// WithHints shows or hides the keyboard hint line.
func WithHints(show bool) Option {
	return func(m *Modal) { m.showHints = show }
}

// WithHintText replaces the keyboard hint line.
func WithHintText(text string) Option {
	return func(m *Modal) { m.hintText = text }
}

// WithPrimaryAction sets the action returned by an otherwise unhandled Enter.
func WithPrimaryAction(id string) Option {
	return func(m *Modal) { m.primaryAction = id }
}

// WithCloseOnBackdropClick toggles closing on backdrop clicks (default on).
func WithCloseOnBackdropClick(close bool) Option {
	return func(m *Modal) { m.closeOnBackdrop = close }
}

// WithRTL mirrors the header for right-to-left languages.
func WithRTL(rtl bool) Option {
	return func(m *Modal) { m.rtl = rtl }
}

type placed struct {
	rect    mouse.Rect
	section int
	passive bool
}

// Modal is a dialog container. A closed modal renders nothing.
type Modal struct {
	title           string
	width           int
	variant         Variant
	showHints       bool
	hintText        string
	primaryAction   string
	closeOnBackdrop bool
	rtl             bool

	sections []Section
	open     bool

	focusID string
	hoverID string

	// rebuilt on every render
	order  []string
	placed map[string]placed
}

// New returns a closed modal.
func New(title string, opts ...Option) *Modal {
	m := &Modal{
		title:           title,
		width:           SizeMedium.Width(),
		showHints:       true,
		hintText:        "tab next · enter select · esc close",
		closeOnBackdrop: true,
		placed:          map[string]placed{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSection appends a section and returns the modal for chaining.
func (m *Modal) AddSection(s Section) *Modal {
	m.sections = append(m.sections, s)
	return m
}

// SetSections replaces the content.
func (m *Modal) SetSections(sections ...Section) {
	m.sections = sections
}

// SetTitle changes the header text.
func (m *Modal) SetTitle(title string) {
	m.title = title
}

// Open shows the modal and resets focus.
func (m *Modal) Open() {
	m.open = true
	m.focusID = ""
	m.hoverID = ""
}

// Close hides the modal. Closing a closed modal does nothing.
func (m *Modal) Close() {
	if !m.open {
		return
	}
	m.open = false
	m.focusID = ""
	m.hoverID = ""
	m.order = nil
	m.placed = map[string]placed{}
}

// IsOpen reports whether the modal is visible.
func (m *Modal) IsOpen() bool {
	return m.open
}

// FocusedID returns the id of the focused element, or "".
func (m *Modal) FocusedID() string {
	return m.focusID
}

// SetFocus focuses the element with id.
func (m *Modal) SetFocus(id string) {
	m.focusID = id
}

// Width returns the outer panel width.
func (m *Modal) Width() int {
	return m.width
}

// ContentWidth returns the usable width inside the panel.
func (m *Modal) ContentWidth() int {
	return m.width - 2*chromeX
}

// Render draws the modal centered on a screenW x screenH backdrop and
// registers its hit regions with handler. A closed modal returns "".
func (m *Modal) Render(screenW, screenH int, handler *mouse.Handler) string {
	if !m.open {
		return ""
	}

	width := m.width
	if screenW > 0 && width > screenW {
		width = screenW
	}
	contentWidth := max(10, width-2*chromeX)

	m.order = m.order[:0]
	m.placed = map[string]placed{}

	var body strings.Builder
	body.WriteString(m.renderHeader(contentWidth))
	body.WriteString("\n\n")

	type pending struct {
		info    FocusableInfo
		section int
		y       int
	}
	var focusables []pending
	y := headerLines
	wrote := false
	for i, s := range m.sections {
		rs := s.Render(contentWidth, m.focusID, m.hoverID)
		if rs.Content == "" {
			continue
		}
		if wrote {
			body.WriteString("\n")
		}
		wrote = true
		body.WriteString(rs.Content)
		for _, f := range rs.Focusables {
			focusables = append(focusables, pending{info: f, section: i, y: y})
		}
		y += lipgloss.Height(rs.Content)
	}

	if m.showHints {
		body.WriteString("\n\n")
		body.WriteString(MutedText.Render(ansi.Truncate(m.hintText, contentWidth, "…")))
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(m.variant)).
		Padding(1, 2).
		Width(contentWidth + 4).
		Render(body.String())

	panelW, panelH := lipgloss.Width(panel), lipgloss.Height(panel)
	x := max(0, (screenW-panelW)/2)
	top := max(0, (screenH-panelH)/2)

	if handler != nil {
		handler.HitMap.AddRect(RegionBackdrop, 0, 0, max(screenW, panelW), max(screenH, panelH), nil)
		handler.HitMap.AddRect(RegionPanel, x, top, panelW, panelH, nil)
		closeX := x + chromeX + contentWidth - 1
		if m.rtl {
			closeX = x + chromeX
		}
		handler.HitMap.AddRect(RegionClose, closeX, top+chromeY, 1, 1, nil)
	}

	for _, p := range focusables {
		r := mouse.Rect{
			X: x + chromeX + p.info.OffsetX,
			Y: top + chromeY + p.y + p.info.OffsetY,
			W: max(1, p.info.Width),
			H: max(1, p.info.Height),
		}
		m.placed[p.info.ID] = placed{rect: r, section: p.section, passive: p.info.Passive}
		if !p.info.Passive {
			m.order = append(m.order, p.info.ID)
		}
		if handler != nil {
			handler.HitMap.AddRect(p.info.ID, r.X, r.Y, r.W, r.H, nil)
		}
	}

	if m.focusID != "" {
		if _, ok := m.placed[m.focusID]; !ok {
			m.focusID = ""
		}
	}

	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, panel,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(Backdrop))
}

func (m *Modal) renderHeader(contentWidth int) string {
	glyph := CloseGlyph
	if m.hoverID == RegionClose {
		glyph = CloseHover
	}
	title := ModalTitle.Render(ansi.Truncate(m.title, contentWidth-2, "…"))
	gap := max(1, contentWidth-lipgloss.Width(title)-1)
	if m.rtl {
		return glyph.Render("×") + strings.Repeat(" ", gap) + title
	}
	return title + strings.Repeat(" ", gap) + glyph.Render("×")
}

// HandleKey processes a key press. It returns the triggered action id
// ("" for none) and any command from the focused section.
func (m *Modal) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	if !m.open {
		return "", nil
	}

	key := msg.String()
	s := m.owner(m.focusID)
	captures := false
	if c, ok := s.(KeyCapturer); ok {
		captures = c.CapturesKey(m.focusID, key)
	}

	switch key {
	case "tab":
		m.cycleFocus(1)
		return "", nil
	case "shift+tab":
		m.cycleFocus(-1)
		return "", nil
	case "esc":
		if !captures {
			return ActionClose, nil
		}
	}

	if s != nil {
		action, cmd := s.Update(msg, m.focusID)
		if action != "" || captures || key != "enter" {
			return m.resolve(action), cmd
		}
	}
	if key == "enter" && m.primaryAction != "" {
		return m.primaryAction, nil
	}
	return "", nil
}

// HandleMouse processes a mouse event through handler.
func (m *Modal) HandleMouse(msg tea.MouseMsg, handler *mouse.Handler) (string, tea.Cmd) {
	if !m.open {
		return "", nil
	}
	action := handler.HandleMouse(msg)
	if action.Region == nil {
		return "", nil
	}
	id := action.Region.ID

	switch action.Type {
	case mouse.ActionHover:
		m.hoverID = id
		return "", nil

	case mouse.ActionClick, mouse.ActionDoubleClick:
		switch id {
		case RegionBackdrop:
			if m.closeOnBackdrop {
				return ActionClose, nil
			}
			return "", nil
		case RegionPanel:
			return "", nil
		case RegionClose:
			return ActionClose, nil
		}
		p, ok := m.placed[id]
		if !ok {
			return "", nil
		}
		if !p.passive {
			m.focusID = id
		}
		res, cmd := m.sections[p.section].Update(ClickMsg{
			ID: id,
			X:  action.X - p.rect.X,
			Y:  action.Y - p.rect.Y,
		}, m.focusID)
		return m.resolve(res), cmd

	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		p, ok := m.placed[id]
		if !ok {
			return "", nil
		}
		delta := 1
		if action.Type == mouse.ActionScrollUp {
			delta = -1
		}
		res, cmd := m.sections[p.section].Update(WheelMsg{ID: id, Delta: delta}, m.focusID)
		return m.resolve(res), cmd
	}
	return "", nil
}

// Update forwards a non-input message (a blink tick, a loaded option list)
// to every section.
func (m *Modal) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range m.sections {
		if _, cmd := s.Update(msg, m.focusID); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Modal) resolve(action string) string {
	if action == ActionBlur {
		m.focusID = ""
		return ""
	}
	if id, ok := strings.CutPrefix(action, focusPrefix); ok {
		m.focusID = id
		return ""
	}
	return action
}

func (m *Modal) owner(id string) Section {
	if id == "" {
		return nil
	}
	p, ok := m.placed[id]
	if !ok || p.section >= len(m.sections) {
		return nil
	}
	return m.sections[p.section]
}

func (m *Modal) cycleFocus(step int) {
	if len(m.order) == 0 {
		return
	}
	idx := -1
	for i, id := range m.order {
		if id == m.focusID {
			idx = i
			break
		}
	}
	if idx == -1 {
		if step > 0 {
			m.focusID = m.order[0]
		} else {
			m.focusID = m.order[len(m.order)-1]
		}
		return
	}
	m.focusID = m.order[(idx+step+len(m.order))%len(m.order)]
}

// FocusIDs returns the tab order computed by the last render.
func (m *Modal) FocusIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ElementRect returns the screen rectangle of an element from the last
// render.
func (m *Modal) ElementRect(id string) (mouse.Rect, bool) {
	p, ok := m.placed[id]
	return p.rect, ok
}
