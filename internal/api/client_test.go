package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcus/bizdesk/internal/mockapi"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := mockapi.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := mockapi.New(store, mockapi.Options{Token: "tok", HashCost: bcrypt.MinCost})
	require.NoError(t, srv.Seed(context.Background()))

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://x"} {
		_, err := New(u, "")
		assert.Error(t, err, "url %q", u)
	}
}

func TestClientCRUD(t *testing.T) {
	ts := newBackend(t)
	ctx := context.Background()

	core, logs := observer.New(zap.DebugLevel)
	c, err := New(ts.URL+"/", "tok", WithLogger(zap.New(core)))
	require.NoError(t, err)

	created, err := c.Create(ctx, "products", map[string]any{"name": "Bolt", "price": "2.50", "unit": "un-pcs"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)

	unitID, unitName := created.Ref("unit")
	assert.Equal(t, "un-pcs", unitID)
	assert.Equal(t, "Pieces", unitName)

	updated, err := c.Update(ctx, "products", id, map[string]any{"price": "3.00"})
	require.NoError(t, err)
	assert.Equal(t, "3.00", updated.String("price"))

	got, err := c.Get(ctx, "products", id)
	require.NoError(t, err)
	assert.Equal(t, "Bolt", got.String("name"))

	page, err := c.List(ctx, "products", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	require.NoError(t, c.Remove(ctx, "products", id))
	page, err = c.List(ctx, "products", nil)
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.NotNil(t, page.Results)

	entries := logs.FilterMessage("request").All()
	require.NotEmpty(t, entries)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestListBareArray(t *testing.T) {
	ts := newBackend(t)
	c, err := New(ts.URL, "tok")
	require.NoError(t, err)

	page, err := c.List(context.Background(), "statuses", nil)
	require.NoError(t, err)
	assert.Equal(t, len(page.Results), page.Count)
	assert.Positive(t, page.Count)
}

func TestListFilter(t *testing.T) {
	ts := newBackend(t)
	c, err := New(ts.URL, "tok")
	require.NoError(t, err)

	page, err := c.List(context.Background(), "channels", map[string]string{"search": "web"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Website", page.Results[0].DisplayName())
}

func TestStructuredErrorsFromBackend(t *testing.T) {
	ts := newBackend(t)
	c, err := New(ts.URL, "tok")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Create(ctx, "users", map[string]any{"name": "x", "email": "admin@example.com", "password": "pw"})
	var se *StructuredError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	msg, ok := se.FieldMessage("email")
	assert.True(t, ok)
	assert.Equal(t, "already exists", msg)
	assert.Empty(t, se.Message)

	err = c.Remove(ctx, "users", "missing")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Not found.", se.Message)
}

func TestLoginAndCurrentUser(t *testing.T) {
	ts := newBackend(t)
	anon, err := New(ts.URL, "")
	require.NoError(t, err)

	_, err = anon.CurrentUser(context.Background())
	var se *StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)

	token, err := anon.Login(context.Background(), "admin@example.com", "admin")
	require.NoError(t, err)

	c, err := New(ts.URL, token)
	require.NoError(t, err)
	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.True(t, u.CanManageUsers())
	assert.Equal(t, "co-1", u.CompanyID)
}

func TestContextCancel(t *testing.T) {
	ts := newBackend(t)
	c, err := New(ts.URL, "tok")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.List(ctx, "leads", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
