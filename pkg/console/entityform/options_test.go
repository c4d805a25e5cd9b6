package entityform

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/mockapi"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/internal/phone"
	"github.com/marcus/bizdesk/pkg/console/widget"
)

type fakeQuerier struct {
	calls atomic.Int32
	delay time.Duration
	fail  map[string]bool
	data  map[string][]models.Record
}

func (q *fakeQuerier) List(ctx context.Context, entity string, _ map[string]string) (*models.Page, error) {
	q.calls.Add(1)
	// failures return at once, ahead of any slower siblings
	if q.fail[entity] {
		return nil, errors.New("boom")
	}
	if q.delay > 0 {
		select {
		case <-time.After(q.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &models.Page{Results: q.data[entity], Count: len(q.data[entity])}, nil
}

func TestOptionLoaderLoad(t *testing.T) {
	q := &fakeQuerier{data: map[string][]models.Record{
		"statuses": {{"id": "st-new", "name": "New"}, {"id": "st-won", "name": "Won"}},
		"users":    {{"id": "u1", "first_name": "Sara", "last_name": "Ali"}},
	}}
	l := NewOptionLoader(q, nil)

	opts, err := l.Load(context.Background(), map[string]Source{
		"status":      {Entity: "statuses"},
		"assigned_to": {Entity: "users"},
	})
	require.NoError(t, err)
	assert.Equal(t, []widget.Option{{Value: "st-new", Label: "New"}, {Value: "st-won", Label: "Won"}}, opts["status"])
	assert.Equal(t, []widget.Option{{Value: "u1", Label: "Sara Ali"}}, opts["assigned_to"])
}

func TestOptionLoaderSharesInflightRequests(t *testing.T) {
	q := &fakeQuerier{delay: 50 * time.Millisecond, data: map[string][]models.Record{
		"users": {{"id": "u1", "name": "Sara"}},
	}}
	l := NewOptionLoader(q, nil)

	opts, err := l.Load(context.Background(), map[string]Source{
		"owner":       {Entity: "users"},
		"assigned_to": {Entity: "users"},
	})
	require.NoError(t, err)
	assert.Len(t, opts["owner"], 1)
	assert.Len(t, opts["assigned_to"], 1)
	assert.EqualValues(t, 1, q.calls.Load())

	// different filters are different requests
	_, err = l.Load(context.Background(), map[string]Source{
		"a": {Entity: "users", Filter: map[string]string{"role": "agent"}},
		"b": {Entity: "users"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, q.calls.Load())
}

func TestOptionLoaderPartialFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	q := &fakeQuerier{
		delay: 20 * time.Millisecond,
		fail:  map[string]bool{"users": true},
		data: map[string][]models.Record{
			"statuses": {{"id": "st-new", "name": "New"}},
			"channels": {{"id": "ch-web", "name": "Website"}},
		},
	}
	l := NewOptionLoader(q, zap.New(core))

	opts, err := l.Load(context.Background(), map[string]Source{
		"status":      {Entity: "statuses"},
		"channel":     {Entity: "channels"},
		"assigned_to": {Entity: "users"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.NotContains(t, opts, "assigned_to")
	assert.Equal(t, []widget.Option{{Value: "st-new", Label: "New"}}, opts["status"], "slower sources survive a failure")
	assert.Equal(t, []widget.Option{{Value: "ch-web", Label: "Website"}}, opts["channel"])

	entries := logs.FilterMessage("load options").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "assigned_to", entries[0].ContextMap()["field"])
}

func TestFormAppliesLoadedOptions(t *testing.T) {
	q := &fakeQuerier{data: map[string][]models.Record{
		"units": {{"id": "un-pcs", "name": "Pieces"}, {"id": "un-kg", "name": "Kilograms"}},
	}}
	f := New(Products, Deps{Mutator: &fakeMutator{}, Options: NewOptionLoader(q, nil)})

	cmd := f.OpenCreate()
	require.NotNil(t, cmd)
	assert.True(t, f.selects["unit"].Loading())

	msg := cmd()
	// a reopen invalidates the earlier load
	f.OpenCreate()
	f.Update(msg)
	assert.True(t, f.selects["unit"].Loading())

	f.Update(f.loadOptions()())
	assert.False(t, f.selects["unit"].Loading())
	assert.Len(t, f.selects["unit"].Options(), 2)

	f.Set("unit", "un-kg")
	assert.Len(t, f.selects["unit"].Options(), 2, "options survive a programmatic change")
	assert.Contains(t, f.View(100, 50), "Kilograms")
}

func newClient(t *testing.T) *api.Client {
	t.Helper()
	store, err := mockapi.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := mockapi.New(store, mockapi.Options{Token: "tok", HashCost: bcrypt.MinCost})
	require.NoError(t, srv.Seed(context.Background()))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	c, err := api.New(ts.URL, "tok")
	require.NoError(t, err)
	return c
}

func TestFormAgainstMockServer(t *testing.T) {
	c := newClient(t)
	deps := Deps{
		Mutator:        c,
		Options:        NewOptionLoader(c, nil),
		T:              intl.MustNew("en"),
		DefaultCountry: "SA",
		User:           models.User{ID: "usr-admin", Role: models.RoleAdmin, CompanyID: "co-1"},
	}

	t.Run("duplicate user email", func(t *testing.T) {
		f := New(Users, deps)
		f.OpenCreate()
		f.Set("first_name", "Other")
		f.Set("last_name", "Admin")
		f.Set("email", "admin@example.com")
		f.Set("role", "manager")
		f.Set("password", "long-enough")

		assert.Nil(t, run(f, f.Submit()))
		assert.Equal(t, "This email is already in use", f.Errors().Get("email"))
		assert.Equal(t, StateEditing, f.State())
	})

	t.Run("duplicate lead phone", func(t *testing.T) {
		create := func() *Form {
			f := New(Leads, deps)
			cmd := f.OpenCreate()
			require.NotNil(t, cmd, "leads load statuses, channels and users")
			f.Update(cmd())
			f.Set("name", "Ali")
			f.Set("status", "st-new")
			f.Set("phone_numbers", phone.List{}.Add(phone.Entry{Number: "+966512345678"}))
			return f
		}

		first := create()
		saved, ok := run(first, first.Submit()).(SavedMsg)
		require.True(t, ok)
		assert.Equal(t, "+966512345678", saved.Record.String("phone"))

		second := create()
		assert.Nil(t, run(second, second.Submit()))
		assert.Equal(t, "A lead with this phone number already exists", second.Errors().Get("phone_numbers"))
		assert.False(t, second.Errors().Has(models.GeneralError))
	})

	t.Run("product create", func(t *testing.T) {
		f := New(Products, deps)
		f.OpenCreate()
		f.Set("name", "Bolt")
		f.Set("sku", "B-1")
		f.Set("unit", "un-pcs")
		f.Set("price", "1")
		saved, ok := run(f, f.Submit()).(SavedMsg)
		require.True(t, ok)
		assert.Equal(t, "Product created", saved.Message)
	})
}
