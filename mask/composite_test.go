package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeAppliesMaskAsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	m := grayFromValues(2, 1, []uint8{255, 0})

	out := Composite(img, m)
	require.Equal(t, 2, out.Bounds().Dx())

	fg := out.NRGBAAt(0, 0)
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, fg)

	bg := out.NRGBAAt(1, 0)
	assert.Equal(t, uint8(0), bg.A)
	assert.Equal(t, uint8(10), bg.R)
}

func TestCompositeResizesMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	m := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range m.Pix {
		m.Pix[i] = 255
	}

	out := Composite(img, m)
	assert.Equal(t, 8, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())
	assert.Equal(t, uint8(255), out.NRGBAAt(4, 4).A)
}
