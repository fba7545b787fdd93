package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("YUHUN_ENV", filepath.Join(dir, "missing.env"))
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("BILINGUAL", "false")
	t.Setenv("AVATARS_ENABLED", "false")
	return &harness{t: t, dbPath: filepath.Join(dir, "history.db")}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--sqlite", h.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskThenBrowse(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "ask", "should", "I", "move?")
	require.NoError(t, err)
	assert.Contains(t, out, "> should I move?")
	assert.Contains(t, out, "primary: philosopher")
	assert.Contains(t, out, "[friction]")

	out, err = h.run("", "-f", "json", "history", "list")
	require.NoError(t, err)
	var nodes []domain.SoulStateNode
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)

	out, err = h.run("", "history", "show", nodes[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, nodes[0].ID)

	_, err = h.run("", "history", "show", "node_nope")
	assert.ErrorIs(t, err, service.ErrNodeNotFound)

	out, err = h.run("", "history", "list", "--search", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 1 node(s)")

	out, err = h.run("", "tension")
	require.NoError(t, err)
	assert.Contains(t, out, "Node 1")

	out, err = h.run("", "insight")
	require.NoError(t, err)
	assert.Contains(t, out, "connection:  8/10")
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "-s", "alpha", "ask", "hello")
	require.NoError(t, err)

	out, err := h.run("", "-s", "beta", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 node(s)")

	_, err = h.run("", "-s", "beta", "insight")
	assert.ErrorIs(t, err, service.ErrEmptyHistory)
}

func TestPurgeConfirmation(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "ask", "hello")
	require.NoError(t, err)

	out, err := h.run("n\n", "history", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	out, err = h.run("", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 node(s)")

	_, err = h.run("y\n", "history", "purge")
	require.NoError(t, err)

	_, err = h.run("", "ask", "again")
	require.NoError(t, err)
	out, err = h.run("", "history", "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "erased")

	out, err = h.run("", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 node(s)")
}

func TestInvalidInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "-f", "yaml", "version")
	assert.Error(t, err)

	_, err = h.run("", "history", "list", "--zone", "lukewarm")
	assert.Error(t, err)

	_, err = h.run("", "-s", "bad session", "ask", "hi")
	assert.ErrorIs(t, err, service.ErrInvalidSession)

	_, err = h.run("", "ask")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "yuhun "))
}
