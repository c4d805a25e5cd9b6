package entityform

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/internal/phone"
)

type call struct {
	entity  string
	id      string
	payload map[string]any
}

type fakeMutator struct {
	mu      sync.Mutex
	creates []call
	updates []call
	err     error
	// wait, when set, makes calls block until ctx is done
	wait bool
}

func (m *fakeMutator) Create(ctx context.Context, entity string, payload map[string]any) (models.Record, error) {
	m.mu.Lock()
	m.creates = append(m.creates, call{entity: entity, payload: payload})
	m.mu.Unlock()
	return m.result(ctx, payload)
}

func (m *fakeMutator) Update(ctx context.Context, entity, id string, payload map[string]any) (models.Record, error) {
	m.mu.Lock()
	m.updates = append(m.updates, call{entity: entity, id: id, payload: payload})
	m.mu.Unlock()
	return m.result(ctx, payload)
}

func (m *fakeMutator) result(ctx context.Context, payload map[string]any) (models.Record, error) {
	if m.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	rec := models.Record{"id": "new-1"}
	for k, v := range payload {
		rec[k] = v
	}
	return rec, nil
}

func (m *fakeMutator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creates) + len(m.updates)
}

func newForm(t *testing.T, e Entity, m *fakeMutator) (*Form, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := New(e, Deps{
		Mutator:        m,
		T:              intl.MustNew("en"),
		Log:            zap.New(core),
		DefaultCountry: "SA",
		User:           models.User{ID: "usr-admin", Role: models.RoleAdmin, CompanyID: "co-1"},
	})
	return f, logs
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back, returning the follow-up
// message (if any).
func run(f *Form, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	next := f.Update(cmd())
	if next == nil {
		return nil
	}
	return next()
}

func TestLeadCreateFlow(t *testing.T) {
	m := &fakeMutator{}
	f, logs := newForm(t, Leads, m)

	assert.Nil(t, f.OpenCreate(), "no option loader, nothing to fetch")
	require.Equal(t, StateEditing, f.State())
	f.Set("name", "Ali")
	f.Set("status", "st-new")

	// type the number into the phone list and press enter to add it
	f.View(120, 60)
	f.Focus("phone_numbers:new")
	f.View(120, 60)
	for _, r := range "512345678" {
		f.Update(key(string(r)))
	}
	f.Update(key("enter"))

	phones := f.Values().Phones("phone_numbers")
	require.Len(t, phones, 1)
	assert.Equal(t, "+966512345678", phones[0].Number)
	assert.Equal(t, phone.TypeMobile, phones[0].Type)
	assert.True(t, phones[0].IsPrimary)

	msg := run(f, f.Submit())
	require.Equal(t, 1, m.calls())
	assert.Equal(t, "leads", m.creates[0].entity)
	assert.Equal(t, "+966512345678", m.creates[0].payload["phone"])
	assert.Equal(t, "Ali", m.creates[0].payload["name"])

	saved, ok := msg.(SavedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "Lead created", saved.Message)
	assert.Equal(t, ModeCreate, saved.Mode)
	assert.False(t, f.IsOpen())
	assert.Empty(t, f.Values(), "a successful create clears the form")
	assert.Zero(t, logs.Len())
}

func TestProductPriceRequiredBlocksSubmit(t *testing.T) {
	m := &fakeMutator{}
	f, logs := newForm(t, Products, m)
	f.OpenCreate()
	f.Set("name", "Bolt")
	f.Set("sku", "B-1")
	f.Set("unit", "un-pcs")

	assert.Nil(t, f.Submit())
	assert.Zero(t, m.calls())
	assert.Equal(t, "Price is required", f.Errors().Get("price"))
	assert.False(t, f.Errors().Has("name"))
	assert.True(t, f.IsOpen())
	assert.Equal(t, StateEditing, f.State())
	assert.Zero(t, logs.Len(), "validation errors are not logged")
	assert.Contains(t, f.View(100, 50), "Price is required")

	f.Set("price", "0")
	f.Submit()
	assert.Equal(t, "Price must be greater than 0", f.Errors().Get("price"))

	f.Set("price", "12.50")
	assert.False(t, f.Errors().Has("price"), "editing clears the field error")
	run(f, f.Submit())
	require.Equal(t, 1, m.calls())
	assert.Equal(t, json.Number("12.5"), m.creates[0].payload["price"])
	assert.Nil(t, m.creates[0].payload["quantity"], "an empty number is sent as null")
}

func TestRatingRange(t *testing.T) {
	f, _ := newForm(t, Services, &fakeMutator{})
	f.OpenCreate()
	f.Set("name", "Repair")
	f.Set("price", "10")
	f.Set("rating", "5.5")
	f.Submit()
	assert.Equal(t, "Rating must be at most 5", f.Errors().Get("rating"))
}

func TestUserEmailExistsMapsToField(t *testing.T) {
	m := &fakeMutator{err: &api.StructuredError{
		Status: 400,
		Fields: map[string][]string{"email": {"already exists"}},
	}}
	f, logs := newForm(t, Users, m)
	f.OpenCreate()
	f.Set("first_name", "Sara")
	f.Set("last_name", "Ali")
	f.Set("email", "sara@example.com")
	f.Set("role", "agent")
	f.Set("password", "secret-pass")

	assert.Nil(t, run(f, f.Submit()))
	assert.Equal(t, 1, m.calls())
	assert.Equal(t, "This email is already in use", f.Errors().Get("email"))
	assert.False(t, f.Errors().Has(models.GeneralError))
	assert.Equal(t, StateEditing, f.State())
	assert.True(t, f.IsOpen())
	assert.Equal(t, "co-1", m.creates[0].payload["company"])

	entries := logs.FilterMessage("submit failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "users", entries[0].ContextMap()["entity"])
}

func TestFlatExistsMessageFindsField(t *testing.T) {
	m := &fakeMutator{err: &api.StructuredError{Status: 400, Message: "Lead with this phone already exists."}}
	f, _ := newForm(t, Leads, m)
	f.OpenCreate()
	f.Set("name", "Ali")
	f.Set("status", "st-new")
	f.Set("phone_numbers", phone.List{}.Add(phone.Entry{Number: "+966512345678", Type: phone.TypeMobile}))

	run(f, f.Submit())
	assert.Equal(t, "A lead with this phone number already exists", f.Errors().Get("phone_numbers"))
	assert.False(t, f.Errors().Has(models.GeneralError))
}

func TestGeneralErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"flat message", &api.StructuredError{Status: 403, Message: "Not allowed."}, "Not allowed."},
		{"malformed", &api.StructuredError{Status: 500, Malformed: true}, "Something went wrong. Please try again."},
		{"network", errors.New("dial tcp: connection refused"), "Could not reach the server. Check your connection and try again."},
		{"unknown field", &api.StructuredError{Status: 400, Fields: map[string][]string{"tenant": {"bad"}}}, "tenant: bad"},
		{"unknown fields", &api.StructuredError{Status: 400, Fields: map[string][]string{"bogus": {"x"}, "tenant": {"bad", "worse"}}}, "bogus: x, tenant: bad; worse"},
		{"empty", &api.StructuredError{Status: 502}, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, logs := newForm(t, Categories, &fakeMutator{err: tt.err})
			f.OpenCreate()
			f.Set("name", "Tools")
			run(f, f.Submit())
			assert.Equal(t, tt.want, f.Errors().Get(models.GeneralError))
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestDuplicateSubmitPrevented(t *testing.T) {
	m := &fakeMutator{}
	f, _ := newForm(t, Categories, m)
	f.OpenCreate()
	f.Set("name", "Tools")

	first := f.Submit()
	require.NotNil(t, first)
	assert.Equal(t, StateSubmitting, f.State())
	assert.Nil(t, f.Submit(), "a second submit while pending is rejected")
	assert.Nil(t, f.Cancel(), "cancel is unavailable while submitting")
	f.Update(key("enter"))

	run(f, first)
	assert.Equal(t, 1, m.calls())
	assert.False(t, f.IsOpen())
}

func TestEditsIgnoredWhileSubmitting(t *testing.T) {
	m := &fakeMutator{}
	f, _ := newForm(t, Categories, m)
	f.OpenEdit(models.Record{"id": "cat-1", "name": "Tools"})
	f.Set("name", "Hardware")

	cmd := f.Submit()
	require.NotNil(t, cmd)
	f.Set("name", "Garden")
	assert.Nil(t, f.Update(key("x")))
	assert.Nil(t, f.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	assert.Equal(t, "Hardware", f.Values().String("name"))

	_, ok := run(f, cmd).(SavedMsg)
	require.True(t, ok)
	require.Len(t, m.updates, 1)
	assert.Equal(t, "Hardware", m.updates[0].payload["name"])
	assert.Equal(t, "Hardware", f.Values().String("name"), "the saved values are what was sent")
}

func TestStaleResultIgnored(t *testing.T) {
	m := &fakeMutator{}
	f, _ := newForm(t, Categories, m)
	f.OpenCreate()
	f.Set("name", "Tools")
	cmd := f.Submit()
	done := cmd().(submitDoneMsg)

	other, _ := newForm(t, Categories, m)
	assert.Nil(t, other.Update(done), "results for another form are ignored")

	done.token++
	assert.Nil(t, f.Update(done))
	assert.Equal(t, StateSubmitting, f.State())
}

func TestSubmitTimeout(t *testing.T) {
	m := &fakeMutator{wait: true}
	f, _ := newForm(t, Categories, m)
	f.deps.Timeout = 20 * time.Millisecond
	f.OpenCreate()
	f.Set("name", "Tools")

	run(f, f.Submit())
	assert.Equal(t, StateEditing, f.State())
	assert.Equal(t, "The server took too long to respond. Please try again.", f.Errors().Get(models.GeneralError))
	assert.NotNil(t, f.Submit(), "the form can be submitted again")
}

func TestCancelDiscards(t *testing.T) {
	m := &fakeMutator{}
	f, _ := newForm(t, Categories, m)
	f.OpenCreate()
	f.Set("name", "Tools")

	msg := f.Cancel()()
	assert.Equal(t, ClosedMsg{Entity: "categories"}, msg)
	assert.False(t, f.IsOpen())
	assert.Zero(t, m.calls())
	assert.Empty(t, f.View(80, 24))
	assert.Nil(t, f.Cancel())

	f.OpenCreate()
	assert.Empty(t, f.Values().String("name"), "reopening starts fresh")

	cmd := f.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.False(t, f.IsOpen())
}

func TestEditSeedsAndUpdates(t *testing.T) {
	m := &fakeMutator{}
	f, _ := newForm(t, Products, m)
	f.OpenEdit(models.Record{
		"id":        "prd-1",
		"name":      "Bolt",
		"sku":       "B-1",
		"price":     12.5,
		"quantity":  float64(40),
		"unit":      map[string]any{"id": "un-kg", "name": "Kilograms"},
		"is_active": true,
	})

	v := f.Values()
	assert.Equal(t, "12.5", v.String("price"))
	assert.Equal(t, "40", v.String("quantity"))
	assert.Equal(t, "un-kg", v.String("unit"))
	assert.True(t, v.Bool("is_active"))
	assert.Contains(t, f.View(100, 50), "Kilograms", "the reference name shows before options load")

	f.Set("price", "15")
	msg := run(f, f.Submit())
	require.Len(t, m.updates, 1)
	assert.Equal(t, "prd-1", m.updates[0].id)
	assert.Equal(t, "un-kg", m.updates[0].payload["unit"])

	saved := msg.(SavedMsg)
	assert.Equal(t, "Product updated", saved.Message)
	assert.Equal(t, "15", f.Values().String("price"), "an edit keeps its state")
}

func TestPasswordOnlyOnCreate(t *testing.T) {
	f, _ := newForm(t, Users, &fakeMutator{})
	f.OpenEdit(models.Record{"id": "u1", "first_name": "A", "last_name": "B", "email": "a@b.co", "role": "agent"})
	_, hasPassword := f.Values()["password"]
	assert.False(t, hasPassword)
	assert.NotContains(t, f.Payload(), "password")
}

func TestArabicAlignment(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	f := New(Categories, Deps{Mutator: &fakeMutator{}, T: intl.MustNew("ar"), Log: zap.New(core)})
	f.OpenCreate()
	f.Submit()
	assert.NotEmpty(t, f.Errors().Get("name"))
	assert.NotEqual(t, "Name is required", f.Errors().Get("name"))
}
