package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/hub"
	"github.com/clognichain/clogni/internal/testutil"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	reg := prometheus.NewRegistry()
	logger, err := audit.Open(
		filepath.Join(dir, "audit.jsonl.gz"),
		filepath.Join(dir, "audit.db"),
		audit.WithClock(testutil.NewClockAt(1700000000)),
		audit.WithMetrics(audit.NewMetrics(reg)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	h := hub.New()
	hub.RegisterAuditFuncs(h, logger)

	srv := New(h, slog.New(slog.NewTextHandler(io.Discard, nil)), reg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postCall(t *testing.T, ts *httptest.Server, body string) (int, callResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/call", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out callResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCallIngestAndTail(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"fn":"ingest","args":{"source":"svc1","payload":{"msg":"hello"}}}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.OK)
	assert.NotEmpty(t, out.ID)
	assert.JSONEq(t, `{"payload":{"msg":"hello"},"sha":`+sha(t, out.Result)+`,"source":"svc1","ts":1700000000}`, string(out.Result))

	status, out = postCall(t, ts, `{"fn":"tail","args":{"n":1}}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.OK)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(out.Result, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "svc1", records[0]["source"])
}

// sha extracts the sha field from an ingest result so the full envelope
// can be compared without hard-coding the fingerprint.
func sha(t *testing.T, result json.RawMessage) string {
	t.Helper()
	var env struct {
		SHA string `json:"sha"`
	}
	require.NoError(t, json.Unmarshal(result, &env))
	require.Len(t, env.SHA, 64)
	return `"` + env.SHA + `"`
}

func TestCallUnknownFunction(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"fn":"nope","args":{}}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, out.OK)
	assert.Contains(t, out.Error, "not registered")
}

func TestCallValidationError(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"fn":"ingest","args":{"payload":{"a":1}}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.OK)
}

func TestCallBadJSON(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"fn":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.OK)
}

func TestCallMissingFnField(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"args":{}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out.Error, "fn is required")

	// The name travels under "fn"; no other key is recognized.
	status, out = postCall(t, ts, `{"function":"stats"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out.Error, "fn is required")
}

func TestCallOmittedArgs(t *testing.T) {
	ts := newTestServer(t)

	status, out := postCall(t, ts, `{"fn":"stats"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.OK)
	assert.JSONEq(t, `{"entries":0}`, string(out.Result))
}

func TestFunctionsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/functions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"ingest", "parse", "search", "stats", "tail"}, out["functions"])
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	_, out := postCall(t, ts, `{"fn":"ingest","args":{"source":"svc1","payload":{"a":1}}}`)
	require.True(t, out.OK)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "clogni_appends_total")
}

func TestMetricsNotMountedWithoutGatherer(t *testing.T) {
	srv := New(hub.New(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
