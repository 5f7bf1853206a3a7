package fracindex

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBetweenKnownValues(t *testing.T) {
	tests := []struct {
		low, high string
		want      string
	}{
		{"", "", "a0"},
		{"", "a0", "Zz"},
		{"", "Zz", "Zy"},
		{"a0", "", "a1"},
		{"a1", "", "a2"},
		{"az", "", "b00"},
		{"Zz", "", "a0"},
		{"a0", "a1", "a0V"},
		{"a1", "a2", "a1V"},
		{"a0V", "a1", "a0l"},
		{"Zz", "a01", "a0"},
		{"", "a0V", "a0"},
		{"b125", "", "b13"},
		{"a0", "a0V", "a0G"},
	}

	for _, tt := range tests {
		t.Run(tt.low+"_"+tt.high, func(t *testing.T) {
			got, err := KeyBetween(tt.low, tt.high)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.low != "" {
				assert.Greater(t, got, tt.low)
			}
			if tt.high != "" {
				assert.Less(t, got, tt.high)
			}
		})
	}
}

func TestKeyBetweenRejects(t *testing.T) {
	tests := []struct {
		name      string
		low, high string
	}{
		{"reversed", "a1", "a0"},
		{"equal", "a1", "a1"},
		{"trailing zero", "a00", ""},
		{"bad head", "00", ""},
		{"too short", "b0", ""},
		{"bad digit", "a-", ""},
		{"smallest integer", "A" + strings.Repeat("0", 26), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyBetween(tt.low, tt.high)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKey))
		})
	}
}

func TestRepeatedBisectionStaysBetween(t *testing.T) {
	low, err := KeyBetween("", "")
	require.NoError(t, err)
	high, err := KeyBetween(low, "")
	require.NoError(t, err)

	// Always insert directly after low: the gap shrinks every time.
	for i := 0; i < 60; i++ {
		k, err := KeyBetween(low, high)
		require.NoError(t, err)
		require.Less(t, low, k)
		require.Less(t, k, high)
		require.NoError(t, Validate(k))
		high = k
	}
}

func TestRepeatedInsertBeforeHigh(t *testing.T) {
	low, high := "a0", "a1"
	for i := 0; i < 60; i++ {
		k, err := KeyBetween(low, high)
		require.NoError(t, err)
		require.Less(t, low, k)
		require.Less(t, k, high)
		low = k
	}
}

func TestAppendAndPrependNeverRenumber(t *testing.T) {
	keys := []string{First}
	for i := 0; i < 200; i++ {
		k, err := KeyBetween(keys[len(keys)-1], "")
		require.NoError(t, err)
		keys = append(keys, k)
	}
	for i := 0; i < 200; i++ {
		k, err := KeyBetween("", keys[0])
		require.NoError(t, err)
		keys = append([]string{k}, keys...)
	}

	assert.True(t, sort.StringsAreSorted(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestNKeysBetween(t *testing.T) {
	tests := []struct {
		name      string
		low, high string
		n         int
	}{
		{"open", "", "", 5},
		{"after", "a5", "", 4},
		{"before", "", "a5", 4},
		{"between", "a0", "a1", 10},
		{"single", "a0", "a1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := NKeysBetween(tt.low, tt.high, tt.n)
			require.NoError(t, err)
			require.Len(t, keys, tt.n)
			assert.True(t, sort.StringsAreSorted(keys))
			for i, k := range keys {
				if i > 0 {
					assert.Less(t, keys[i-1], k)
				}
				if tt.low != "" {
					assert.Less(t, tt.low, k)
				}
				if tt.high != "" {
					assert.Less(t, k, tt.high)
				}
			}
		})
	}

	keys, err := NKeysBetween("", "", 0)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare("a0", "a1"))
	assert.Equal(t, 1, Compare("b00", "az"))
	assert.Equal(t, 0, Compare("a0", "a0"))
	assert.Equal(t, -1, Compare("Zz", "a0"))
}
