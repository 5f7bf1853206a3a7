package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

const failingScenario = `name: wrong_count
app: shop
steps:
  - op: add
    kind: page
    name: home
    parent: root
    relation: pages
assertions:
  - type: count
    kind: page
    count: 2
`

func TestScenarioCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestScenarioCommandNonExistentDir(t *testing.T) {
	_, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenarioCommandRunsAll(t *testing.T) {
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ shop_editing")
	assert.Contains(t, out, "✓ rejected_edits")
	assert.Contains(t, out, "✓ move_and_redo")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

func TestScenarioCommandFilter(t *testing.T) {
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "shop*")
	require.NoError(t, err)

	var report ScenarioReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, "shop_editing", report.Scenarios[0].Name)
	assert.Equal(t, 1, report.Passed)
}

func TestScenarioCommandInvalidFilter(t *testing.T) {
	_, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenarioCommandEmptyDir(t *testing.T) {
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestScenarioCommandFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(failingScenario), 0o644))

	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "Expected: 2 page nodes")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestScenarioCommandUnloadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\nsteps: [\n"), 0o644))

	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var report ScenarioReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, "broken.yaml", report.Scenarios[0].Name)
	require.NotEmpty(t, report.Scenarios[0].Errors)
	assert.Contains(t, report.Scenarios[0].Errors[0], ErrCodeScenarioError)
}

func TestScenarioCommandGolden(t *testing.T) {
	golden := filepath.Join("..", "harness", "testdata", "golden")
	out, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}),
		scenariosDir, "--filter", "shop_editing", "--golden", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ shop_editing")
}

func TestScenarioCommandGoldenUpdate(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	// A missing golden file fails until it is written with --update.
	_, err := execute(t, NewScenarioCommand(&RootOptions{Format: "text"}),
		scenariosDir, "--filter", "shop_editing", "--golden", golden)
	require.Error(t, err)

	_, err = execute(t, NewScenarioCommand(&RootOptions{Format: "text"}),
		scenariosDir, "--filter", "shop_editing", "--golden", golden, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(golden, "shop_editing.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "shop_editing.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	_, err = execute(t, NewScenarioCommand(&RootOptions{Format: "text"}),
		scenariosDir, "--filter", "shop_editing", "--golden", golden)
	require.NoError(t, err)
}
