package cli

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/domfile"
	"github.com/roach88/appdom/internal/testutil"
)

func hashFile(t *testing.T, path string) string {
	t.Helper()
	d, err := domfile.Read(context.Background(), path)
	require.NoError(t, err)
	return testutil.Hash(t, d)
}

func TestDiffJSON(t *testing.T) {
	out, err := execute(t, NewDiffCommand(&RootOptions{Format: "json"}), shopDoc, shopEdited)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   DiffResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Set)
	assert.Equal(t, 1, resp.Data.Unset)

	p, err := dom.DecodePatch(resp.Data.Patch)
	require.NoError(t, err)
	assert.Equal(t, []dom.NodeID{"t"}, p.Unset)
	var set []dom.NodeID
	for _, n := range p.Set {
		set = append(set, n.ID)
	}
	assert.ElementsMatch(t, []dom.NodeID{"e", "f"}, set)
}

func TestDiffIdenticalDocuments(t *testing.T) {
	out, err := execute(t, NewDiffCommand(&RootOptions{Format: "text"}), shopDoc, shopDoc)
	require.NoError(t, err)
	assert.Equal(t, `{"set":[],"unset":[]}`+"\n", out)
}

func TestDiffThenPatchRoundTrip(t *testing.T) {
	patch := tempPath(t, "change.json")
	out, err := execute(t, NewDiffCommand(&RootOptions{Format: "text"}), shopDoc, shopEdited, "-o", patch)
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote patch (2 set, 1 unset) to "+patch+"\n", out)

	result := tempPath(t, "patched.json")
	out, err = execute(t, NewPatchCommand(&RootOptions{Format: "text"}), shopDoc, patch, "-o", result)
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote 7 nodes to "+result+"\n", out)

	assert.Equal(t, hashFile(t, shopEdited), hashFile(t, result))
}

func TestPatchJSON(t *testing.T) {
	patch := tempPath(t, "change.json")
	_, err := execute(t, NewDiffCommand(&RootOptions{Format: "text"}), shopDoc, shopEdited, "-o", patch)
	require.NoError(t, err)

	out, err := execute(t, NewPatchCommand(&RootOptions{Format: "json"}), shopDoc, patch)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   PatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 7, resp.Data.Nodes)
	assert.Equal(t, hashFile(t, shopEdited), resp.Data.Hash)

	d, err := dom.Decode(resp.Data.Document)
	require.NoError(t, err)
	assert.True(t, d.Has("f"))
	assert.False(t, d.Has("t"))
}

func TestPatchBreaksTree(t *testing.T) {
	// Removing the page orphans its children.
	patch := tempPath(t, "orphan.json")
	require.NoError(t, os.WriteFile(patch, []byte(`{"set":[],"unset":["p"]}`), 0o644))

	out, err := execute(t, NewPatchCommand(&RootOptions{Format: "text"}), shopDoc, patch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]: patched document is invalid")
}

func TestPatchUndecodable(t *testing.T) {
	patch := tempPath(t, "bad.json")
	require.NoError(t, os.WriteFile(patch, []byte(`{"set":[{"id":"x","kind":"widget"}]}`), 0o644))

	out, err := execute(t, NewPatchCommand(&RootOptions{Format: "text"}), shopDoc, patch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]")
}

func TestDiffMissingFile(t *testing.T) {
	_, err := execute(t, NewDiffCommand(&RootOptions{Format: "text"}), shopDoc, "testdata/nonexistent.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
