package domfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ident"
)

func sampleDom(t *testing.T) *dom.Dom {
	t.Helper()
	gen := ident.NewSequence("n")
	d, err := dom.NewApp(gen, "Shop")
	require.NoError(t, err)
	page, err := dom.Create(gen, dom.KindPage, dom.NodeInit{Name: "Home"})
	require.NoError(t, err)
	d, err = dom.Attach(d, page, d.Root(), dom.RelPages, "")
	require.NoError(t, err)
	return d
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.json")
	d := sampleDom(t)

	require.NoError(t, Write(ctx, path, d))

	got, err := Read(ctx, path)
	require.NoError(t, err)
	want, err := dom.Hash(d)
	require.NoError(t, err)
	have, err := dom.Hash(got)
	require.NoError(t, err)
	assert.Equal(t, want, have)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	enc, err := dom.Encode(d)
	require.NoError(t, err)
	assert.Equal(t, enc, raw)
}

func TestWrite_ReplacesWithoutLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")

	require.NoError(t, WriteBytes(ctx, path, []byte("old")))
	require.NoError(t, WriteBytes(ctx, path, []byte("new")))

	data, err := ReadBytes(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"app.json", "app.json.lock"}, names)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRead_Corrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, WriteBytes(ctx, path, []byte(`{"version":1,"root":"r","nodes":{}}`)))

	_, err := Read(ctx, path)
	require.Error(t, err)
	assert.True(t, dom.IsCorrupt(err))
	assert.Contains(t, err.Error(), path)
}

func TestPatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "change.json")

	gen := ident.NewSequence("n")
	base, err := dom.NewApp(gen, "Shop")
	require.NoError(t, err)
	next, err := dom.SetName(base, base.Root(), "store")
	require.NoError(t, err)
	p := dom.Diff(base, next)

	require.NoError(t, WritePatch(ctx, path, p))
	got, err := ReadPatch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	applied := dom.ApplyPatch(base, got)
	assert.Equal(t, "store", applied.RootNode().Name)
}

func TestWrite_LockedByAnotherHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")

	held := flock.New(LockPath(path))
	require.NoError(t, held.Lock())
	defer func() { _ = held.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := WriteBytes(ctx, path, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = ReadBytes(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRead_SharedLocksCoexist(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, Write(ctx, path, sampleDom(t)))

	reader := flock.New(LockPath(path))
	require.NoError(t, reader.RLock())
	defer func() { _ = reader.Unlock() }()

	_, err := Read(ctx, path)
	require.NoError(t, err)
}
