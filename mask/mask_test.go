package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayFromValues(width, height int, values []uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	copy(m.Pix, values)
	return m
}

func TestThreshold(t *testing.T) {
	m := grayFromValues(2, 2, []uint8{0, 88, 89, 255})

	// 0.35*255 = 89.25, truncated to 89
	out := Threshold(m, 0.35)
	assert.Equal(t, []uint8{0, 0, 255, 255}, out.Pix)
}

func TestThresholdZeroKeepsEverything(t *testing.T) {
	m := grayFromValues(2, 1, []uint8{0, 200})

	out := Threshold(m, 0)
	assert.Equal(t, []uint8{255, 255}, out.Pix)
}

func TestThresholdOneKeepsOnlyWhite(t *testing.T) {
	m := grayFromValues(3, 1, []uint8{0, 254, 255})

	out := Threshold(m, 1)
	assert.Equal(t, []uint8{0, 0, 255}, out.Pix)
}

func TestEnhanceEdgesFlatMaskUnchanged(t *testing.T) {
	m := grayFromValues(4, 4, make([]uint8, 16))

	out := EnhanceEdges(m)
	assert.Equal(t, m.Pix, out.Pix)
}

func TestEnhanceEdgesNeverDarkens(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x >= 4 {
				m.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	out := EnhanceEdges(m)
	require.Len(t, out.Pix, len(m.Pix))
	for i := range m.Pix {
		assert.GreaterOrEqual(t, out.Pix[i], m.Pix[i])
	}
}

func TestSmoothBinarizes(t *testing.T) {
	m := grayFromValues(4, 4, []uint8{
		10, 30, 200, 220,
		20, 40, 210, 230,
		15, 35, 205, 225,
		25, 45, 215, 235,
	})

	out := Smooth(m)
	for _, v := range out.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
}

func TestEnhanceRespectsFlags(t *testing.T) {
	m := grayFromValues(4, 4, []uint8{
		0, 0, 255, 255,
		0, 0, 255, 255,
		0, 0, 255, 255,
		0, 0, 255, 255,
	})

	same := Enhance(m, false, false)
	assert.Equal(t, m.Pix, same.Pix)

	enhanced := Enhance(m, true, true)
	for _, v := range enhanced.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
}

func TestResize(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range m.Pix {
		m.Pix[i] = 255
	}

	out := Resize(m, 5, 7)
	assert.Equal(t, 5, out.Bounds().Dx())
	assert.Equal(t, 7, out.Bounds().Dy())
	assert.Equal(t, uint8(255), out.GrayAt(2, 3).Y)
}

func TestResizeNoopKeepsSameMask(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 6, 6))
	out := Resize(m, 6, 6)
	assert.Same(t, m, out)
}

func TestFromImageGrayPassthrough(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 3, 3))
	assert.Same(t, m, FromImage(m))
}

func TestFromImageConvertsColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{A: 255})

	m := FromImage(img)
	assert.Equal(t, uint8(255), m.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), m.GrayAt(1, 0).Y)
}
