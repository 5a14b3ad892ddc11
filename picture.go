package longpost

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ---- Picture loading ----

var pictureClient = &http.Client{Timeout: 15 * time.Second}

// LoadPicture loads the picture drawn under a post. dest is a local path, a
// file:// URL or an http(s) URL; relative paths are resolved against
// baseDir, or the working directory when baseDir is empty.
func LoadPicture(ctx context.Context, dest, baseDir string) (image.Image, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return nil, errors.New("longpost: empty picture destination")
	}
	scheme := ""
	if idx := strings.Index(dest, "://"); idx != -1 {
		scheme = strings.ToLower(dest[:idx])
	}
	switch scheme {
	case "", "file":
		return loadLocalPicture(dest, baseDir)
	case "http", "https":
		return loadRemotePicture(ctx, dest)
	default:
		return nil, fmt.Errorf("longpost: unsupported picture scheme: %s", scheme)
	}
}

func loadLocalPicture(dest, baseDir string) (image.Image, error) {
	path := strings.TrimPrefix(dest, "file://")
	if !filepath.IsAbs(path) {
		base := strings.TrimSpace(baseDir)
		if base != "" {
			path = filepath.Join(base, path)
		}
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("longpost: opening picture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("longpost: decoding picture %s: %w", path, err)
	}
	return img, nil
}

func loadRemotePicture(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("longpost: fetching picture: %w", err)
	}
	resp, err := pictureClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("longpost: fetching picture: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("longpost: fetching picture %s: %s", url, resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("longpost: decoding picture %s: %w", url, err)
	}
	return img, nil
}
