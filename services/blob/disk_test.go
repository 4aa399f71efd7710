package blobsvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	conf := &core.Config{Storage: core.StorageConfig{LocalDir: dir, PublicURL: "http://localhost:8000/media/"}}
	store := NewDiskStore(conf)
	ctx := context.Background()

	url, err := store.Put(ctx, "files/logo.png", core.Blob{Name: "logo.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/files/logo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "files", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(ctx, "files/logo.png"))
	_, err = os.Stat(filepath.Join(dir, "files", "logo.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting a missing blob is a no-op
	assert.NoError(t, store.Delete(ctx, "files/logo.png"))

	_, err = store.Put(ctx, "../escape.txt", core.Blob{Content: strings.NewReader("x")})
	assert.Error(t, err)
}
