package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/config"
)

func TestLocalStoreSaveFileAndOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": filepath.Join(dir, "files")}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	src := filepath.Join(dir, "chunk_0000.mp3")
	require.NoError(t, os.WriteFile(src, []byte("audio bytes"), 0o644))
	require.NoError(t, SaveFile(context.Background(), store, "vid_chunk_0000.mp3", src))

	f, err := store.Open(context.Background(), "vid_chunk_0000.mp3")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "audio bytes", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "files"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Equal(t, "http://host/api/v1/files/vid_chunk_0000.mp3", store.URL("vid_chunk_0000.mp3", "http://host/"))
}

func TestLocalStoreRejectsNestedKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	_, err = store.Open(context.Background(), "../etc/passwd")
	require.Error(t, err)
	require.False(t, ValidKey("a/b"))
	require.False(t, ValidKey(".."))
	require.True(t, ValidKey("video_chunk.mp3"))
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"bucket": "b"}})
	require.Error(t, err)
}
