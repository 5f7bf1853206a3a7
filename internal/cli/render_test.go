package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGolden(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), shopDoc)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render_shop", []byte(strings.TrimSuffix(out, "\n")))
}

func TestRenderToFile(t *testing.T) {
	path := tempPath(t, "tree.json")
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), shopDoc, "-o", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote 5 nodes to "+path+"\n", out)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/golden/render_shop.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "json"}), shopDoc)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Nodes)
	assert.NotEmpty(t, resp.Data.Hash)
	assert.Contains(t, string(resp.Data.Tree), `"root":"r"`)
}

func TestRenderInvalidDocument(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), danglingDoc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E010]")
}
