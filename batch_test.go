package mrc

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMany(t *testing.T) {
	dir := t.TempDir()

	paths := make([]string, 5)
	for i := range paths {
		h := testHeader()
		h.ISpg = int32(i)
		paths[i] = filepath.Join(dir, fmt.Sprintf("map%d.mrc", i))
		require.NoError(t, Save(paths[i], h, make([]byte, h.DataSize())))
	}

	files, err := OpenMany(context.Background(), paths...)
	require.NoError(t, err)
	require.Len(t, files, 5)
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	// Results come back in input order.
	for i, f := range files {
		assert.Equal(t, int32(i), f.Header().ISpg, "file %d", i)
	}
}

func TestOpenManyFailureClosesAll(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.mrc")
	h := testHeader()
	require.NoError(t, Save(good, h, make([]byte, h.DataSize())))

	missing := filepath.Join(dir, "missing.mrc")

	files, err := OpenMany(context.Background(), good, missing)
	require.Error(t, err)
	assert.Nil(t, files)
	// The failing path is named in the error.
	assert.Contains(t, err.Error(), "missing.mrc")
}

func TestOpenManyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "map.mrc")
	h := testHeader()
	require.NoError(t, Save(path, h, make([]byte, h.DataSize())))

	_, err := OpenMany(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenManyEmpty(t *testing.T) {
	files, err := OpenMany(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}
