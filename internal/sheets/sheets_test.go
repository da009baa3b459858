package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"blasting_tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type fakeSheetsAPI struct {
	mu      sync.Mutex
	values  [][]interface{}
	updates map[string][][]interface{}
	files   []map[string]string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	const valuesPrefix = "/v4/spreadsheets/sheet-1/values/"
	switch {
	case r.URL.Path == "/files":
		_ = json.NewEncoder(w).Encode(map[string]any{"files": f.files})
	case r.URL.Path == "/v4/spreadsheets/sheet-1" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"sheets": []any{
				map[string]any{"properties": map[string]any{"title": "draft"}},
				map[string]any{"properties": map[string]any{"title": "2025-03-01"}},
			},
		})
	case strings.HasPrefix(r.URL.Path, valuesPrefix) && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "draft!A1:Z10", "values": f.values})
	case strings.HasPrefix(r.URL.Path, valuesPrefix) && r.Method == http.MethodPut:
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, "missing valueInputOption", http.StatusBadRequest)
			return
		}
		f.updates[strings.TrimPrefix(r.URL.Path, valuesPrefix)] = body.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedCells": 1})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheetsAPI) setFiles(files []map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = files
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClientWithOptions(context.Background(), config.NoRetry,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func sampleValues() [][]interface{} {
	return [][]interface{}{
		{"Tracking ID", "Status", "Margin", "Comments"},
		{"T-1", "Pending", "$10.00"},
		{},
		{"T-2", "Assigned", "$5.00", "see T-1"},
	}
}

func TestListAllRecords(t *testing.T) {
	api := &fakeSheetsAPI{values: sampleValues(), updates: map[string][][]interface{}{}}
	ws := newTestClient(t, api).Worksheet("sheet-1", "draft")

	headers, rows, err := ws.ListAllRecords(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Tracking ID", "Status", "Margin", "Comments"}, headers)
	require.Len(t, rows, 3)
	assert.Equal(t, "T-1", rows[0]["Tracking ID"])
	assert.Equal(t, "", rows[0]["Comments"])
	assert.Equal(t, "", rows[1]["Tracking ID"])
	assert.Equal(t, "see T-1", rows[2]["Comments"])
}

func TestFindRows(t *testing.T) {
	api := &fakeSheetsAPI{values: sampleValues(), updates: map[string][][]interface{}{}}
	ws := newTestClient(t, api).Worksheet("sheet-1", "draft")

	rows, err := ws.FindRows(context.Background(), "T-2")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, rows)

	rows, err = ws.FindRows(context.Background(), "T-9")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteCell(t *testing.T) {
	api := &fakeSheetsAPI{values: sampleValues(), updates: map[string][][]interface{}{}}
	ws := newTestClient(t, api).Worksheet("sheet-1", "draft")

	require.NoError(t, ws.WriteCell(context.Background(), 4, 2, "Dropped"))
	require.NoError(t, ws.WriteCell(context.Background(), 2, 28, 12.5))

	assert.Equal(t, [][]interface{}{{"Dropped"}}, api.updates["'draft'!B4"])
	assert.Equal(t, [][]interface{}{{12.5}}, api.updates["'draft'!AB2"])

	assert.Error(t, ws.WriteCell(context.Background(), 0, 1, "x"))
}

func TestListWorksheetNames(t *testing.T) {
	api := &fakeSheetsAPI{updates: map[string][][]interface{}{}}
	names, err := newTestClient(t, api).ListWorksheetNames(context.Background(), "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "2025-03-01"}, names)
}

func TestResolveSpreadsheetID(t *testing.T) {
	api := &fakeSheetsAPI{
		updates: map[string][][]interface{}{},
		files:   []map[string]string{{"id": "sheet-1", "name": "Blasting tracker"}},
	}
	client := newTestClient(t, api)

	id, err := client.ResolveSpreadsheetID(context.Background(), "Blasting tracker")
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", id)

	api.setFiles(nil)
	_, err = client.ResolveSpreadsheetID(context.Background(), "Blasting tracker")
	assert.Error(t, err)

	api.setFiles([]map[string]string{{"id": "a"}, {"id": "b"}})
	_, err = client.ResolveSpreadsheetID(context.Background(), "Blasting tracker")
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&googleapi.Error{Code: 429}))
	assert.True(t, IsRetryable(&googleapi.Error{Code: 503}))
	assert.True(t, IsRetryable(&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}}))
	assert.False(t, IsRetryable(&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "forbidden"}}}))
	assert.False(t, IsRetryable(&googleapi.Error{Code: 400}))
	assert.True(t, IsRetryable(errors.New("connection reset by peer")))
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{1: "A", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for col, want := range tests {
		assert.Equal(t, want, ColumnName(col), "column %d", col)
	}
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'draft'", quoteTitle("draft"))
	assert.Equal(t, "'Bob''s trips'", quoteTitle("Bob's trips"))
}
