package longpost

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadPictureLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 3, 2), 0o644))

	for _, dest := range []string{"pic.png", path, "file://" + path} {
		img, err := LoadPicture(context.Background(), dest, dir)
		require.NoError(t, err, dest)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds(), dest)
	}
}

func TestLoadPictureRemote(t *testing.T) {
	data := pngBytes(t, 4, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pic.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	img, err := LoadPicture(context.Background(), srv.URL+"/pic.png", "")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 5), img.Bounds())

	_, err = LoadPicture(context.Background(), srv.URL+"/missing.png", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadPictureCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 1, 1))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadPicture(ctx, srv.URL, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadPictureErrors(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("not a picture"), 0o644))

	for _, dest := range []string{"", "   ", "ftp://example.com/pic.png", "missing.png", notImage} {
		_, err := LoadPicture(context.Background(), dest, dir)
		assert.Error(t, err, "%q", dest)
	}
}
