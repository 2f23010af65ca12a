// Package imageio loads input photos from disk or over HTTP and writes the
// PNG outputs the removal tools produce.
package imageio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

const fetchTimeout = 30 * time.Second

// Load reads an image from a local path or an http(s) URL.
func Load(ctx context.Context, src string) (image.Image, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch(ctx, src)
	}

	img, err := imaging.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", src, err)
	}
	return img, nil
}

func fetch(ctx context.Context, url string) (image.Image, error) {
	client := resty.New().SetTimeout(fetchTimeout)

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch image %s: unexpected status %d", url, resp.StatusCode())
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", url, err)
	}
	return img, nil
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return nil
}

// MaskPath derives the sibling mask filename for a composite output path.
func MaskPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_mask.png"
}

// DefaultOutputPath derives `<input>_nobg.png` from a path or URL.
func DefaultOutputPath(input string) string {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		input = filepath.Base(strings.SplitN(input, "?", 2)[0])
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_nobg.png"
}

// FlattenOnWhite composites an image with transparency onto a white
// background. Models expect three opaque channels.
func FlattenOnWhite(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
