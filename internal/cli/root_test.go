package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "appdom", cmd.Use)
	assert.Contains(t, cmd.Long, "APPDOM_FORMAT")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "render", "diff", "patch", "scenario", "history", "snapshot", "checkout"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultDB, dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestOutputFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"render", "diff", "patch", "checkout"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		outputFlag := sub.Flags().Lookup("output")
		require.NotNil(t, outputFlag, name)
		assert.Equal(t, "o", outputFlag.Shorthand, name)
	}
}

func TestScenarioCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scenarioCmd, _, err := cmd.Find([]string{"scenario"})
	require.NoError(t, err)

	updateFlag := scenarioCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, scenarioCmd.Flags().Lookup("filter"))
	require.NotNil(t, scenarioCmd.Flags().Lookup("golden"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--format", "invalid", "validate", shopDoc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("APPDOM_FORMAT", "json")

	out, err := execute(t, NewRootCommand(), "validate", shopDoc)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("APPDOM_FORMAT", "json")

	out, err := execute(t, NewRootCommand(), "--format", "text", "validate", shopDoc)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/shop.json is valid (7 nodes)")
}

func TestFormatFromConfigFile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "appdom.yaml")
	require.NoError(t, os.WriteFile(config, []byte("format: json\n"), 0o644))

	out, err := execute(t, NewRootCommand(), "--config", config, "validate", shopDoc)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--config", "/nonexistent/appdom.yaml", "validate", shopDoc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
