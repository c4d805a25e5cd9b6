package widget

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// numberPattern accepts partial input: an optional minus, digits and at
// most one decimal point.
var numberPattern = regexp.MustCompile(`^-?\d*\.?\d*$`)

// ValidNumberInput reports whether s is acceptable stepper input.
func ValidNumberInput(s string) bool {
	return numberPattern.MatchString(s)
}

// Stepper is a numeric input with increment and decrement controls.
// Arithmetic is decimal so repeated steps never drift.
type Stepper struct {
	Frame
	ID       string
	OnChange func(string)

	min, max *decimal.Decimal
	step     decimal.Decimal
	places   int32
	input    textinput.Model
}

// StepperOption configures a stepper.
type StepperOption func(*Stepper)

// WithMin sets the lower bound. Unparseable bounds are ignored.
func WithMin(v string) StepperOption {
	return func(s *Stepper) {
		if d, err := decimal.NewFromString(v); err == nil {
			s.min = &d
		}
	}
}

// WithMax sets the upper bound.
func WithMax(v string) StepperOption {
	return func(s *Stepper) {
		if d, err := decimal.NewFromString(v); err == nil {
			s.max = &d
		}
	}
}

// WithStep sets the step; its precision becomes the display precision.
func WithStep(v string) StepperOption {
	return func(s *Stepper) {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			s.step = d
		}
	}
}

// NewStepper returns a stepper holding value. The step defaults to 1.
func NewStepper(id, label, value string, onChange func(string), opts ...StepperOption) *Stepper {
	s := &Stepper{
		Frame:    Frame{Label: label},
		ID:       id,
		OnChange: onChange,
		step:     decimal.NewFromInt(1),
		input:    newInput("0"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if exp := s.step.Exponent(); exp < 0 {
		s.places = -exp
	}
	if ValidNumberInput(value) {
		s.input.SetValue(value)
	}
	return s
}

// Value returns the current text.
func (s *Stepper) Value() string {
	return s.input.Value()
}

// SetValue replaces the text. Input that is not a number is rejected.
func (s *Stepper) SetValue(v string) bool {
	if !ValidNumberInput(v) {
		return false
	}
	s.input.SetValue(v)
	return true
}

// Places returns the display precision.
func (s *Stepper) Places() int32 {
	return s.places
}

// current parses the value; partial input ("", "-", ".") counts as zero.
func (s *Stepper) current() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s.input.Value()))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CanIncrement reports whether value+step stays within the maximum.
func (s *Stepper) CanIncrement() bool {
	return s.max == nil || !s.current().Add(s.step).GreaterThan(*s.max)
}

// CanDecrement reports whether value-step stays within the minimum.
func (s *Stepper) CanDecrement() bool {
	return s.min == nil || !s.current().Sub(s.step).LessThan(*s.min)
}

// Increment adds one step. It reports whether the value changed.
func (s *Stepper) Increment() bool {
	if !s.CanIncrement() {
		return false
	}
	return s.apply(s.current().Add(s.step))
}

// Decrement subtracts one step.
func (s *Stepper) Decrement() bool {
	if !s.CanDecrement() {
		return false
	}
	return s.apply(s.current().Sub(s.step))
}

func (s *Stepper) apply(d decimal.Decimal) bool {
	d = d.Round(s.places)
	if s.min != nil && d.LessThan(*s.min) {
		d = *s.min
	}
	if s.max != nil && d.GreaterThan(*s.max) {
		d = *s.max
	}
	next := d.StringFixed(s.places)
	if next == s.input.Value() {
		return false
	}
	s.input.SetValue(next)
	s.changed()
	return true
}

func (s *Stepper) changed() {
	if s.OnChange != nil {
		s.OnChange(s.input.Value())
	}
}

func (s *Stepper) decID() string { return s.ID + ":dec" }
func (s *Stepper) incID() string { return s.ID + ":inc" }

func (s *Stepper) Render(contentWidth int, focusID, hoverID string) modal.RenderedSection {
	focused := focusID == s.ID
	syncFocus(&s.input, focused)

	dec, inc := modal.Button, modal.Button
	if !s.CanDecrement() {
		dec = modal.ButtonDisabled
	} else if hoverID == s.decID() {
		dec = modal.ButtonHover
	}
	if !s.CanIncrement() {
		inc = modal.ButtonDisabled
	} else if hoverID == s.incID() {
		inc = modal.ButtonHover
	}
	decView := dec.Padding(0, 1).Render("−")
	incView := inc.Padding(0, 1).Render("+")
	decW, incW := lipgloss.Width(decView), lipgloss.Width(incView)

	inputW := max(4, contentWidth-decW-incW-2)
	body := decView + " " + inputBox(s.input, inputW, focused) + " " + incView

	content, row := s.compose(contentWidth, focused, body)
	return modal.RenderedSection{
		Content: content,
		Focusables: []modal.FocusableInfo{
			{ID: s.decID(), OffsetX: 0, OffsetY: row, Width: decW, Height: 1, Passive: true},
			{ID: s.ID, OffsetX: decW + 1, OffsetY: row, Width: inputW, Height: 1},
			{ID: s.incID(), OffsetX: decW + 1 + inputW + 1, OffsetY: row, Width: incW, Height: 1, Passive: true},
		},
	}
}

func (s *Stepper) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	switch msg := msg.(type) {
	case modal.ClickMsg:
		switch msg.ID {
		case s.incID():
			s.Increment()
			return modal.FocusAction(s.ID), nil
		case s.decID():
			s.Decrement()
			return modal.FocusAction(s.ID), nil
		}

	case modal.WheelMsg:
		// the wheel never edits a number; it only drops focus
		if owns(s.ID, msg.ID) && owns(s.ID, focusID) {
			return modal.ActionBlur, nil
		}

	case tea.KeyMsg:
		if focusID != s.ID {
			return "", nil
		}
		switch msg.String() {
		case "up":
			s.Increment()
			return "", nil
		case "down":
			s.Decrement()
			return "", nil
		}
		before := s.input.Value()
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		after := s.input.Value()
		if after == before {
			return "", cmd
		}
		if !ValidNumberInput(after) {
			s.input.SetValue(before)
			return "", cmd
		}
		s.changed()
		return "", cmd
	}
	return "", nil
}
