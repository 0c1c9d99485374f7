package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksage/internal/chat"
	"stocksage/internal/viewer"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLISplit(t, stdin, args...)
	return out, err
}

// runCLISplit keeps stdout and stderr apart.
func runCLISplit(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	credentials := filepath.Join(dir, "credentials.toml")
	t.Setenv("STOCKSAGE_CREDENTIAL_FILE", credentials)
	return credentials
}

func TestKeyCommands(t *testing.T) {
	credentials := isolateConfig(t)
	store := chat.NewFileCredentialStore(credentials)

	_, err := runCLI(t, "", "key", "set", "sk-abc")
	require.NoError(t, err)
	key, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", key)

	_, err = runCLI(t, "sk-from-stdin\n", "key", "set")
	require.NoError(t, err)
	key, _ = store.Load()
	assert.Equal(t, "sk-from-stdin", key)

	_, err = runCLI(t, "", "key", "clear")
	require.NoError(t, err)
	key, _ = store.Load()
	assert.Empty(t, key)

	_, err = runCLI(t, "   \n", "key", "set")
	assert.ErrorIs(t, err, chat.ErrCredentialEmpty)
}

func TestViewCommand(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("id") != "abc" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Conversation not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"abc","title":"AAPL outlook","messages":[{"role":"user","content":"Hi","timestamp":"2025-03-01T09:30:00.000Z"}],"createdAt":"2025-03-01T09:30:00.000Z","totalMessages":1}`))
	}))
	defer srv.Close()

	out, errOut, err := runCLISplit(t, "", "view", "--server", srv.URL, srv.URL+"/shared/abc")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL outlook")
	assert.Contains(t, out, "1 messages")
	assert.NotContains(t, out, "Loading Shared Conversation")
	assert.Contains(t, errOut, "Loading Shared Conversation...")

	out, err = runCLI(t, "", "view", "--server", srv.URL, "missing")
	assert.ErrorIs(t, err, errViewFailed)
	assert.Contains(t, out, viewer.NotFoundText)
}
