package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/naming"
)

func TestSetName(t *testing.T) {
	d, _, nodes := buildShop(t)

	t.Run("same name returns the input", func(t *testing.T) {
		out, err := SetName(d, nodes["box"], "box")
		require.NoError(t, err)
		assert.Same(t, d, out)
	})

	t.Run("rename", func(t *testing.T) {
		out, err := SetName(d, nodes["box"], "container")
		require.NoError(t, err)
		n, _ := out.Get(nodes["box"])
		assert.Equal(t, "container", n.Name)
		old, _ := d.Get(nodes["box"])
		assert.Equal(t, "box", old.Name)
		requireValid(t, out)
	})

	t.Run("collision in page scope", func(t *testing.T) {
		_, err := SetName(d, nodes["label"], "text")
		require.Error(t, err)
		var ve *naming.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, naming.ErrNameTaken, ve.Code)
	})

	t.Run("page siblings collide, other scopes do not", func(t *testing.T) {
		out, err := SetName(d, nodes["about"], "home")
		require.Error(t, err)
		assert.Nil(t, out)

		out, err = SetName(d, nodes["query"], "about")
		require.NoError(t, err)
		requireValid(t, out)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := SetName(d, nodes["box"], "has space")
		assert.True(t, IsValidation(err))
		_, err = SetName(d, nodes["box"], "")
		assert.True(t, IsValidation(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := SetName(d, "missing", "x")
		assert.True(t, IsNotFound(err))
	})
}

func TestSetAttributes(t *testing.T) {
	d, _, nodes := buildShop(t)

	out, err := SetAttributes(d, nodes["box"], ElementAttributes{Component: "Stack"})
	require.NoError(t, err)
	n, _ := out.Get(nodes["box"])
	assert.Equal(t, ElementAttributes{Component: "Stack"}, n.Attributes)

	same, err := SetAttributes(out, nodes["box"], ElementAttributes{Component: "Stack"})
	require.NoError(t, err)
	assert.Same(t, out, same)

	q, _ := d.Get(nodes["query"])
	equal := q.Attributes.(QueryAttributes)
	equal.Query = ir.IRObject{"sql": ir.Str("select * from products")}
	same, err = SetAttributes(d, nodes["query"], equal)
	require.NoError(t, err)
	assert.Same(t, d, same, "structurally equal attributes are a no-op")

	_, err = SetAttributes(d, nodes["box"], PageAttributes{})
	assert.True(t, IsKindMismatch(err))

	reset, err := SetAttributes(out, nodes["box"], nil)
	require.NoError(t, err)
	n, _ = reset.Get(nodes["box"])
	assert.Equal(t, ElementAttributes{}, n.Attributes)
}

func TestSetProp(t *testing.T) {
	d, _, nodes := buildShop(t)
	box := nodes["box"]

	out, err := SetProp(d, box, "color", ir.Str("red"))
	require.NoError(t, err)
	n, _ := out.Get(box)
	assert.Equal(t, ir.Str("red"), n.Prop("color"))
	old, _ := d.Get(box)
	assert.Nil(t, old.Prop("color"))

	same, err := SetProp(out, box, "color", ir.Str("red"))
	require.NoError(t, err)
	assert.Same(t, out, same)

	null, err := SetProp(out, box, "color", ir.IRNull{})
	require.NoError(t, err)
	n, _ = null.Get(box)
	assert.Equal(t, ir.IRNull{}, n.Prop("color"))

	removed, err := RemoveProp(out, box, "color")
	require.NoError(t, err)
	n, _ = removed.Get(box)
	assert.Empty(t, n.Props)

	same, err = RemoveProp(removed, box, "color")
	require.NoError(t, err)
	assert.Same(t, removed, same)

	same, err = SetProp(removed, box, "color", nil)
	require.NoError(t, err)
	assert.Same(t, removed, same)

	_, err = SetProp(d, nodes["home"], "color", ir.Str("red"))
	assert.True(t, IsIncompatible(err))
}

func TestSetParam(t *testing.T) {
	d, _, nodes := buildShop(t)
	q := nodes["query"]

	same, err := SetParam(d, q, "limit", ir.Int(10))
	require.NoError(t, err)
	assert.Same(t, d, same)

	out, err := SetParam(d, q, "limit", ir.Int(20))
	require.NoError(t, err)
	n, _ := out.Get(q)
	assert.Equal(t, ir.Int(20), n.Param("limit"))

	out, err = RemoveParam(out, q, "limit")
	require.NoError(t, err)
	n, _ = out.Get(q)
	assert.Nil(t, n.Param("limit"))

	_, err = SetParam(d, nodes["box"], "limit", ir.Int(1))
	assert.True(t, IsIncompatible(err))
}

func TestSetLayout(t *testing.T) {
	d, _, nodes := buildShop(t)
	box := nodes["box"]

	layout := &Layout{X: 0, Y: 1, Width: 6, Height: 2}
	out, err := SetLayout(d, box, layout)
	require.NoError(t, err)
	n, _ := out.Get(box)
	assert.Equal(t, *layout, *n.Layout)

	layout.Width = 12
	n, _ = out.Get(box)
	assert.Equal(t, int64(6), n.Layout.Width, "layout is copied")

	same, err := SetLayout(out, box, &Layout{X: 0, Y: 1, Width: 6, Height: 2})
	require.NoError(t, err)
	assert.Same(t, out, same)

	cleared, err := SetLayout(out, box, nil)
	require.NoError(t, err)
	n, _ = cleared.Get(box)
	assert.Nil(t, n.Layout)

	_, err = SetLayout(d, nodes["home"], layout)
	assert.True(t, IsIncompatible(err))
}
