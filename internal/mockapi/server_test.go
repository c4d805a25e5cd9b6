package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := New(store, Options{Token: testToken, HashCost: bcrypt.MinCost})
	require.NoError(t, srv.Seed(context.Background()))

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodGet, "/api/leads/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["detail"])

	resp, _ = do(t, ts, http.MethodGet, "/api/leads/", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/auth/token/", "",
		map[string]string{"email": "admin@example.com", "password": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, me := do(t, ts, http.MethodGet, "/api/me/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", me["role"])
	assert.Equal(t, "co-1", me["company"])
	assert.NotContains(t, me, "password_hash")

	resp, _ = do(t, ts, http.MethodPost, "/api/auth/token/", "",
		map[string]string{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateExpandsReferences(t *testing.T) {
	ts := newTestServer(t)

	resp, lead := do(t, ts, http.MethodPost, "/api/leads/", testToken, map[string]any{
		"name":   "Ali",
		"phone":  "+966512345678",
		"status": "st-new",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, lead["id"])
	assert.Equal(t, map[string]any{"id": "st-new", "name": "New"}, lead["status"])

	resp, page := do(t, ts, http.MethodGet, "/api/leads/?status=st-new", testToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, page["count"])

	resp, page = do(t, ts, http.MethodGet, "/api/leads/?status=st-lost", testToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, page["count"])
}

func TestErrorShapes(t *testing.T) {
	ts := newTestServer(t)

	t.Run("structured field error", func(t *testing.T) {
		resp, body := do(t, ts, http.MethodPost, "/api/users/", testToken, map[string]any{
			"name": "Dup", "email": "ADMIN@example.com", "password": "x", "role": "agent",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, map[string]any{"email": []any{"already exists"}}, body["fields"])
		assert.NotContains(t, body, "message")
	})

	t.Run("flat message", func(t *testing.T) {
		payload := map[string]any{"name": "A", "phone": "+966500000001"}
		resp, _ := do(t, ts, http.MethodPost, "/api/leads/", testToken, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := do(t, ts, http.MethodPost, "/api/leads/", testToken, payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "lead with this phone already exists.", body["message"])
	})

	t.Run("flat field map", func(t *testing.T) {
		resp, body := do(t, ts, http.MethodPost, "/api/products/", testToken, map[string]any{
			"name": "Bolt", "price": "0",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "price")
	})

	t.Run("unknown collection", func(t *testing.T) {
		resp, body := do(t, ts, http.MethodGet, "/api/spaceships/", testToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not found.", body["detail"])
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	_, created := do(t, ts, http.MethodPost, "/api/users/", testToken, map[string]any{
		"name": "Sara", "email": "sara@example.com", "password": "pw", "role": "agent",
	})
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "co-1", created["company"], "new users inherit the creator's company")
	assert.NotContains(t, created, "password")

	resp, updated := do(t, ts, http.MethodPatch, "/api/users/"+id+"/", testToken, map[string]any{"role": "manager"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "manager", updated["role"])
	assert.Equal(t, "sara@example.com", updated["email"], "patch keeps other fields")

	resp, _ = do(t, ts, http.MethodPatch, "/api/users/"+id+"/", testToken, map[string]any{"email": "sara@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a record does not collide with itself")

	resp, _ = do(t, ts, http.MethodDelete, "/api/users/"+id+"/", testToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/users/"+id+"/", testToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/users/"+adminID+"/", testToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBareCollections(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/statuses/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Len(t, rows, len(seedData["statuses"]))
}

func TestSeedIsIdempotent(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	srv := New(store, Options{HashCost: bcrypt.MinCost})
	ctx := context.Background()
	require.NoError(t, srv.Seed(ctx))
	require.NoError(t, srv.Seed(ctx))

	units, err := store.List(ctx, "units")
	require.NoError(t, err)
	assert.Len(t, units, len(seedData["units"]))
}
