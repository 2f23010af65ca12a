package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	payload := []byte("onnx-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/briaai/RMBG-1.4/resolve/main/onnx/model.onnx", r.URL.Path)
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "model.onnx")
	client := NewClient(srv.URL)

	require.NoError(t, client.Download(context.Background(), "briaai/RMBG-1.4", "onnx/model.onnx", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "model.onnx")
	err := NewClient(srv.URL).Download(context.Background(), "briaai/RMBG-1.4", "onnx/model.onnx", dest)
	assert.ErrorContains(t, err, "unexpected status 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveDownloadsOnce(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("weights"))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	client := NewClient(srv.URL)

	path1, err := client.Resolve(context.Background(), "briaai/RMBG-1.4", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "briaai--RMBG-1.4", "model.onnx"), path1)

	path2, err := client.Resolve(context.Background(), "briaai/RMBG-1.4", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, path1, path2)

	assert.Equal(t, 1, requests)
}
