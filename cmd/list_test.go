package cmd

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		search  string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", want: map[string]string{}},
		{name: "pairs trimmed", pairs: []string{"status = won", "owner=o1"}, want: map[string]string{"status": "won", "owner": "o1"}},
		{name: "search", search: "chair", want: map[string]string{"search": "chair"}},
		{name: "empty value allowed", pairs: []string{"channel="}, want: map[string]string{"channel": ""}},
		{name: "missing equals", pairs: []string{"status"}, wantErr: true},
		{name: "missing key", pairs: []string{"=won"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilters(tt.pairs, tt.search)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupEntity(t *testing.T) {
	e, err := lookupEntity(" Leads ")
	require.NoError(t, err)
	assert.Equal(t, "leads", e.Name)

	e, err = lookupEntity("product")
	require.NoError(t, err)
	assert.Equal(t, "products", e.Name)

	_, err = lookupEntity("tickets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of: leads, deals")
}

func TestCompleteEntities(t *testing.T) {
	names, _ := completeEntities(listCmd, nil, "p")
	assert.Equal(t, []string{"products", "providers"}, names)
	names, _ = completeEntities(listCmd, []string{"leads"}, "")
	assert.Empty(t, names)
}

func TestRenderList(t *testing.T) {
	recs := []models.Record{
		{"id": "p1", "name": "Desk", "sku": "D-1", "price": "1234.5", "quantity": 3},
		{"id": "p2", "name": "Chair", "sku": "C-9", "price": "80"},
	}
	var buf bytes.Buffer
	renderList(&buf, entityform.Products, recs, "USD", intl.MustNew("en"))
	out := ansi.Strip(buf.String())

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "Desk")
	assert.Contains(t, out, "$1,234.50")
	assert.Contains(t, out, "$80.00")
	assert.Contains(t, out, "2 records")
}

func TestRenderListArabicHeaders(t *testing.T) {
	var buf bytes.Buffer
	renderList(&buf, entityform.Units, nil, "SAR", intl.MustNew("ar"))
	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "الاسم")
	assert.Contains(t, out, "0 سجل")
}
