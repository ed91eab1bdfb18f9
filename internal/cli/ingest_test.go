package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestSinglePayload(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "ingest", "--source", "api", "--payload", `{"event":"login","user":"u1"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "api")
	assert.Contains(t, out, `{"event":"login","user":"u1"}`)
}

func TestIngestJSONOutput(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "--format", "json", "ingest", "--source", "api", "--payload", `{"a":1}`)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			TS      int64           `json:"ts"`
			SHA     string          `json:"sha"`
			Source  string          `json:"source"`
			Payload json.RawMessage `json:"payload"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "api", resp.Data[0].Source)
	assert.Len(t, resp.Data[0].SHA, 64)
	assert.JSONEq(t, `{"a":1}`, string(resp.Data[0].Payload))
}

func TestIngestRequiresPayloadOrFile(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "ingest", "--source", "api")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, dir, "ingest", "--payload", `{}`, "--file", "batch.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIngestRequiresSourceWithPayload(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "ingest", "--payload", `{"a":1}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIngestRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "ingest", "--source", "api", "--payload", `{"a":`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIngestBatchFile(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte(`
- source: svc1
  payload:
    event: login
- source: svc2
  payload:
    event: logout
    count: 2
`), 0o644))

	out, err := runCLI(t, dir, "ingest", "--file", batch)
	require.NoError(t, err)
	assert.Contains(t, out, "svc1")
	assert.Contains(t, out, "svc2")

	out, err = runCLI(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 2")
}

func TestIngestSchemaValidation(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "event.cue")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
	event: string
	count: int
}`), 0o644))

	// Conforming payload is appended.
	_, err := runCLI(t, dir, "ingest", "--source", "api", "--schema", schemaPath,
		"--payload", `{"event":"login","count":1}`)
	require.NoError(t, err)

	// Rejected payload writes nothing.
	_, err = runCLI(t, dir, "ingest", "--source", "api", "--schema", schemaPath,
		"--payload", `{"event":"login","count":"one"}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := runCLI(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 1")
}

func TestIngestMissingSchemaFile(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "ingest", "--source", "api", "--schema",
		filepath.Join(dir, "nope.cue"), "--payload", `{"a":1}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
