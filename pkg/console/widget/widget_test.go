package widget

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/bizdesk/internal/phone"
	"github.com/marcus/bizdesk/pkg/console/modal"
	"github.com/marcus/bizdesk/pkg/console/mouse"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(s modal.Section, focusID, text string) {
	for _, r := range text {
		s.Update(runes(string(r)), focusID)
	}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestValidNumberInput(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"-", true},
		{".", true},
		{"12", true},
		{"-12.5", true},
		{"12.", true},
		{"1.2.3", false},
		{"1e5", false},
		{"--1", false},
		{"1-", false},
		{"abc", false},
		{" 1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidNumberInput(tt.in), "%q", tt.in)
	}
}

func TestStepperRoundTrip(t *testing.T) {
	var changes []string
	s := NewStepper("qty", "Quantity", "1.0", func(v string) { changes = append(changes, v) }, WithStep("0.1"))
	require.Equal(t, int32(1), s.Places())

	for i := 0; i < 10; i++ {
		require.True(t, s.Increment())
	}
	assert.Equal(t, "2.0", s.Value(), "ten 0.1 steps land exactly")
	for i := 0; i < 10; i++ {
		require.True(t, s.Decrement())
	}
	assert.Equal(t, "1.0", s.Value())
	assert.Len(t, changes, 20)
}

func TestStepperBounds(t *testing.T) {
	s := NewStepper("rating", "Rating", "4.5", nil, WithMin("0"), WithMax("5"), WithStep("1"))
	assert.False(t, s.CanIncrement(), "4.5+1 exceeds the maximum")
	assert.False(t, s.Increment())
	assert.Equal(t, "4.5", s.Value())
	assert.True(t, s.CanDecrement())

	s = NewStepper("rating", "Rating", "0", nil, WithMin("0"), WithMax("5"))
	assert.False(t, s.CanDecrement())
	assert.True(t, s.Increment())
	assert.Equal(t, "1", s.Value())
}

func TestStepperEmptyCountsAsZero(t *testing.T) {
	s := NewStepper("price", "Price", "", nil, WithStep("0.01"))
	s.Increment()
	assert.Equal(t, "0.01", s.Value())
}

func TestStepperTypingRejectsInvalid(t *testing.T) {
	var last string
	s := NewStepper("price", "Price", "1.5", func(v string) { last = v })
	s.Render(40, "price", "")

	typeText(s, "price", "a")
	assert.Equal(t, "1.5", s.Value(), "a rejected edit leaves the value alone")
	assert.Empty(t, last)

	typeText(s, "price", ".")
	assert.Equal(t, "1.5", s.Value(), "a second decimal point is rejected")

	typeText(s, "price", "5")
	assert.Equal(t, "1.55", s.Value())
	assert.Equal(t, "1.55", last)
}

func TestStepperKeysAndWheel(t *testing.T) {
	s := NewStepper("qty", "Quantity", "3", nil)
	s.Render(40, "qty", "")

	s.Update(tea.KeyMsg{Type: tea.KeyUp}, "qty")
	assert.Equal(t, "4", s.Value())
	s.Update(tea.KeyMsg{Type: tea.KeyDown}, "qty")
	s.Update(tea.KeyMsg{Type: tea.KeyDown}, "qty")
	assert.Equal(t, "2", s.Value())

	action, _ := s.Update(modal.WheelMsg{ID: "qty", Delta: -1}, "qty")
	assert.Equal(t, modal.ActionBlur, action)
	assert.Equal(t, "2", s.Value(), "the wheel never changes the value")

	action, _ = s.Update(modal.ClickMsg{ID: "qty:inc"}, "")
	assert.Equal(t, modal.FocusAction("qty"), action)
	assert.Equal(t, "3", s.Value())
}

func TestStepperRegions(t *testing.T) {
	s := NewStepper("qty", "Quantity", "1", nil, WithMax("1"))
	r := s.Render(40, "", "")
	require.Len(t, r.Focusables, 3)
	assert.True(t, r.Focusables[0].Passive)
	assert.False(t, r.Focusables[1].Passive)
	assert.Equal(t, "qty", r.Focusables[1].ID)
	assert.True(t, r.Focusables[2].Passive)
}

func testTable(t *testing.T) *phone.Table {
	t.Helper()
	tbl, err := phone.NewTable([]phone.Country{
		{ISO: "SA", Name: "Saudi Arabia", Dial: "+966"},
		{ISO: "AE", Name: "United Arab Emirates", Dial: "+971"},
		{ISO: "US", Name: "United States", Dial: "+1"},
	})
	require.NoError(t, err)
	return tbl
}

func TestPhoneInputSeedAndDigits(t *testing.T) {
	var last string
	p := NewPhoneInput("ph", "Phone", "+971501234567", "SA", nil, func(v string) { last = v }, WithTable(testTable(t)))
	assert.Equal(t, "AE", p.Country().ISO)
	assert.Equal(t, "+971501234567", p.Value())

	p = NewPhoneInput("ph", "Phone", "", "SA", nil, func(v string) { last = v }, WithTable(testTable(t)))
	assert.Equal(t, "SA", p.Country().ISO)
	assert.Empty(t, p.Value(), "no digits means no value")

	p.Render(50, "ph", "")
	typeText(p, "ph", "5a1-2")
	assert.Equal(t, "+966512", p.Value())
	assert.Equal(t, "+966512", last)
}

func TestPhoneInputChooseCountryKeepsDigits(t *testing.T) {
	var last string
	p := NewPhoneInput("ph", "Phone", "+966512345678", "SA", nil, func(v string) { last = v }, WithTable(testTable(t)))

	action, _ := p.Update(modal.ClickMsg{ID: "ph:country"}, "")
	assert.Equal(t, modal.FocusAction("ph:filter"), action)
	require.True(t, p.IsOpen())

	p.Render(50, "ph:filter", "")
	typeText(p, "ph:filter", "emirates")
	require.NotEmpty(t, p.matches)
	assert.Equal(t, "AE", p.matches[0].ISO)

	action, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter}, "ph:filter")
	assert.Equal(t, modal.FocusAction("ph"), action)
	assert.False(t, p.IsOpen())
	assert.Equal(t, "+971512345678", last)
}

func TestPhoneInputOutsideListener(t *testing.T) {
	h := mouse.NewHandler()
	p := NewPhoneInput("ph", "Phone", "", "SA", h, nil, WithTable(testTable(t)))
	assert.Zero(t, h.ListenerCount(), "nothing listens while closed")

	p.OpenDropdown()
	assert.True(t, h.Listening("ph:outside"))

	h.HitMap.AddRect("ph:list", 0, 0, 10, 5, nil)
	h.HitMap.AddRect("name", 0, 10, 10, 1, nil)

	h.HandleMouse(press(2, 2))
	assert.True(t, p.IsOpen(), "a press on the picker keeps it open")

	h.HandleMouse(press(2, 10))
	assert.False(t, p.IsOpen())
	assert.Zero(t, h.ListenerCount(), "closing releases the listener")

	p.OpenDropdown()
	p.Update(tea.KeyMsg{Type: tea.KeyEsc}, "ph:filter")
	assert.False(t, p.IsOpen())
	assert.Zero(t, h.ListenerCount())

	p.OpenDropdown()
	p.Dispose()
	assert.Zero(t, h.ListenerCount())
}

func TestPhoneInputCapturesWhileOpen(t *testing.T) {
	p := NewPhoneInput("ph", "Phone", "", "SA", nil, nil, WithTable(testTable(t)))
	assert.False(t, p.CapturesKey("ph", "esc"))
	p.OpenDropdown()
	assert.True(t, p.CapturesKey("ph:filter", "esc"))
	assert.True(t, p.CapturesKey("ph:filter", "enter"))
	assert.False(t, p.CapturesKey("other", "esc"))
}

func TestSelect(t *testing.T) {
	var last string
	opts := []Option{{"st-new", "New"}, {"st-won", "Won"}, {"st-lost", "Lost"}}
	s := NewSelect("status", "Status", "st-won", "", opts, func(v string) { last = v })
	assert.Equal(t, "Won", s.Label())

	s.Update(tea.KeyMsg{Type: tea.KeyRight}, "status")
	assert.Equal(t, "st-lost", last)
	s.Update(tea.KeyMsg{Type: tea.KeyRight}, "status")
	assert.Equal(t, "st-new", s.Value(), "cycling wraps")
	s.Update(tea.KeyMsg{Type: tea.KeyLeft}, "status")
	assert.Equal(t, "st-lost", s.Value())

	s.Update(runes("w"), "status")
	assert.Equal(t, "st-won", s.Value())

	s.Update(runes("x"), "other")
	assert.Equal(t, "st-won", s.Value(), "keys need focus")
}

func TestSelectHeldLabel(t *testing.T) {
	s := NewSelect("unit", "Unit", "un-kg", "Kilograms", nil, nil)
	s.SetLoading(true)
	assert.Equal(t, "Kilograms", s.Label())

	s.SetOptions([]Option{{"un-pcs", "Pieces"}})
	assert.False(t, s.Loading())
	assert.Equal(t, "un-kg", s.Value(), "a value missing from the options is kept")
	assert.Equal(t, "Kilograms", s.Label())

	s.SetOptions([]Option{{"un-pcs", "Pieces"}, {"un-kg", "Kg"}})
	assert.Equal(t, "Kg", s.Label())
}

func TestCheckbox(t *testing.T) {
	var got []bool
	c := NewCheckbox("active", "Active", false, func(v bool) { got = append(got, v) })
	c.Update(modal.ClickMsg{ID: "active"}, "")
	c.Update(runes(" "), "active")
	c.Update(runes(" "), "other")
	assert.Equal(t, []bool{true, false}, got)
	assert.Contains(t, c.Render(30, "", "").Content, "[ ] Active")
}

func TestTextFieldAndArea(t *testing.T) {
	var v string
	f := NewTextField("name", "Name", "", func(s string) { v = s })
	f.Render(30, "name", "")
	typeText(f, "name", "Acme")
	assert.Equal(t, "Acme", v)

	f.SetPassword(true)
	f.SetValue("secret")
	assert.NotContains(t, f.Render(30, "", "").Content, "secret")

	a := NewTextArea("notes", "Notes", "", 3, nil)
	assert.True(t, a.CapturesKey("notes", "enter"))
	assert.False(t, a.CapturesKey("notes", "esc"))
}

func TestPhoneListAddRemovePrimary(t *testing.T) {
	var got phone.List
	l := NewPhoneList("phones", "Phones", nil, "SA", nil, DefaultPhoneListText(), func(pl phone.List) { got = pl }, WithTable(testTable(t)))

	assert.False(t, l.Add(), "empty number is rejected")
	assert.NotEmpty(t, l.number.Error())

	l.number.SetValue("+966512345678")
	require.True(t, l.Add())
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPrimary, "the first entry becomes primary")
	assert.Empty(t, l.number.Error())
	assert.Empty(t, l.number.Value(), "the new-entry input is cleared")

	l.number.SetValue("+971501234567")
	require.True(t, l.Add())
	require.Len(t, got, 2)
	assert.False(t, got[1].IsPrimary)

	l.Update(runes("p"), "phones:row:1")
	assert.True(t, got[1].IsPrimary)
	assert.False(t, got[0].IsPrimary)

	l.Update(runes("t"), "phones:row:0")
	assert.Equal(t, phone.TypeHome, got[0].Type)

	action, _ := l.Update(runes("x"), "phones:row:1")
	assert.Equal(t, modal.FocusAction("phones:row:0"), action)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPrimary, "removing the primary promotes the first remaining")
}

func TestPhoneListAddButton(t *testing.T) {
	l := NewPhoneList("phones", "Phones", nil, "SA", nil, DefaultPhoneListText(), nil, WithTable(testTable(t)))
	l.number.SetValue("+966512345678")

	action, _ := l.Update(modal.ClickMsg{ID: "phones:add"}, "")
	assert.Equal(t, modal.FocusAction("phones:new"), action)
	assert.Len(t, l.Entries(), 1)

	r := l.Render(60, "", "")
	ids := map[string]bool{}
	for _, f := range r.Focusables {
		ids[f.ID] = true
	}
	for _, id := range []string{"phones:row:0", "phones:new:country", "phones:new", "phones:newtype", "phones:notes", "phones:add"} {
		assert.True(t, ids[id], id)
	}
}
