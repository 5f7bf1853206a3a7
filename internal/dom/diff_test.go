package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/ir"
)

func TestDiffRoundTrip(t *testing.T) {
	a, gen, nodes := buildShop(t)

	b, err := Remove(a, nodes["box"])
	require.NoError(t, err)
	b, _ = addNode(t, b, gen, KindElement, "Hero", nodes["about"], RelChildren)
	b, err = SetProp(b, nodes["text"], "value", ir.Str("hello"))
	require.NoError(t, err)
	b, err = Move(b, nodes["text"], nodes["about"], RelChildren, "")
	require.NoError(t, err)

	p := Diff(a, b)
	assert.False(t, p.Empty())

	got := ApplyPatch(a, p)
	assert.Equal(t, b.Nodes(), got.Nodes())
	assert.Equal(t, a.Root(), got.Root())
	requireValid(t, got)

	unset := map[NodeID]bool{}
	for _, id := range p.Unset {
		unset[id] = true
	}
	assert.Equal(t, map[NodeID]bool{nodes["box"]: true, nodes["label"]: true, nodes["icon"]: true}, unset)
}

func TestDiffIsSorted(t *testing.T) {
	a, gen, _ := buildShop(t)
	b := a
	for i := 0; i < 5; i++ {
		b, _ = addNode(t, b, gen, KindPage, "Extra", b.Root(), RelPages)
	}

	p := Diff(a, b)
	require.Len(t, p.Set, 5)
	for i := 1; i < len(p.Set); i++ {
		assert.Less(t, p.Set[i-1].ID, p.Set[i].ID)
	}
	assert.Equal(t, 5, p.Len())
}

func TestDiffIdentical(t *testing.T) {
	a, _, _ := buildShop(t)

	p := Diff(a, a)
	assert.True(t, p.Empty())
	assert.Same(t, a, ApplyPatch(a, p))
}

func TestPatchInvert(t *testing.T) {
	a, gen, nodes := buildShop(t)

	b, err := Remove(a, nodes["box"])
	require.NoError(t, err)
	b, _ = addNode(t, b, gen, KindQuery, "Orders", nodes["home"], RelQueries)
	b, err = SetName(b, nodes["text"], "caption")
	require.NoError(t, err)

	p := Diff(a, b)
	back := ApplyPatch(b, p.Invert(a))
	assert.Equal(t, a.Nodes(), back.Nodes())
	assert.True(t, Diff(a, back).Empty())
}

func TestDiffContentAcrossDecodedDocuments(t *testing.T) {
	a, _, nodes := buildShop(t)
	b, err := SetName(a, nodes["text"], "caption")
	require.NoError(t, err)

	encA, err := Encode(a)
	require.NoError(t, err)
	encB, err := Encode(b)
	require.NoError(t, err)
	da, err := Decode(encA)
	require.NoError(t, err)
	db, err := Decode(encB)
	require.NoError(t, err)

	assert.Equal(t, da.Len(), Diff(da, db).Len())

	p := DiffContent(da, db)
	require.Len(t, p.Set, 1)
	assert.Equal(t, nodes["text"], p.Set[0].ID)
	assert.Empty(t, p.Unset)
	assert.True(t, DiffContent(da, da).Empty())
}
