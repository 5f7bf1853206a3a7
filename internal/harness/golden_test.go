package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_ShopEditing(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shop_editing.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/move_and_redo.yaml")
	require.NoError(t, err)

	encode := func() []byte {
		result, err := Run(s)
		require.NoError(t, err)
		snap, err := NewSnapshot(s.Name, result)
		require.NoError(t, err)
		data, err := snap.MarshalCanonical()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, string(encode()), string(encode()))
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	snap := &Snapshot{
		ScenarioName: "s",
		Trace:        []TraceEvent{{Seq: 1, Op: "undo", Entries: 2}},
	}
	data, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"render":null,"scenario":"s","trace":[{"entries":2,"op":"undo","seq":1}]}`, string(data))
}
