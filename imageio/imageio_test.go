package imageio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}
	return img
}

func TestSavePNGAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")

	require.NoError(t, SavePNG(testImage(), path))

	img, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLoadFromURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	img, err := Load(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestLoadFromURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/photo.png")
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestMaskPath(t *testing.T) {
	assert.Equal(t, "out_mask.png", MaskPath("out.png"))
	assert.Equal(t, "a/b/photo_nobg_mask.png", MaskPath("a/b/photo_nobg.png"))
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "photo_nobg.png", DefaultOutputPath("photo.jpg"))
	assert.Equal(t, "photo_nobg.png", DefaultOutputPath("https://example.com/images/photo.jpg?size=large"))
}

func TestFlattenOnWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	out := FlattenOnWhite(img)
	p := out.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), p.R)
	assert.Equal(t, uint8(255), p.G)
	assert.Equal(t, uint8(255), p.B)
	assert.Equal(t, uint8(255), p.A)
}
