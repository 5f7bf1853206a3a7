package dom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/ident"
)

// newTestApp returns an app Dom whose ids come from a sequence (n1, n2, ...).
func newTestApp(t *testing.T) (*Dom, *ident.Sequence) {
	t.Helper()
	gen := ident.NewSequence("n")
	d, err := NewApp(gen, "My App")
	require.NoError(t, err)
	return d, gen
}

// addNode creates a node and appends it under parent.
func addNode(t *testing.T, d *Dom, gen ident.Generator, kind Kind, name string, parent NodeID, relation string) (*Dom, NodeID) {
	t.Helper()
	n, err := Create(gen, kind, NodeInit{Name: name})
	require.NoError(t, err)
	next, err := Attach(d, n, parent, relation, "")
	require.NoError(t, err)
	return next, n.ID
}

// requireValid fails the test when d violates an invariant.
func requireValid(t *testing.T, d *Dom) {
	t.Helper()
	require.Empty(t, Verify(d))
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func ids(nodes []*Node) []NodeID {
	out := make([]NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
