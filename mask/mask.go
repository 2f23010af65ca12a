// Package mask implements the post-processing applied to model output masks:
// binarization, edge enhancement and smoothing, and alpha compositing.
package mask

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// FromImage converts any image into a single-channel mask.
func FromImage(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			out.Pix[y*out.Stride+x] = gray.Pix[y*gray.Stride+x*4]
		}
	}
	return out
}

// Resize scales a mask to the given dimensions.
func Resize(m *image.Gray, width, height int) *image.Gray {
	if b := m.Bounds(); b.Dx() == width && b.Dy() == height {
		return m
	}
	return FromImage(imaging.Resize(m, width, height, imaging.Lanczos))
}

// Threshold binarizes a mask: pixels at or above threshold*255 become
// foreground (255), everything else background (0).
func Threshold(m *image.Gray, threshold float64) *image.Gray {
	cutoff := uint8(math.Min(255, math.Max(0, threshold*255)))
	out := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		if v >= cutoff {
			out.Pix[i] = 255
		}
	}
	return out
}

// Enhance applies the optional quality passes: Sobel edge blending and
// smoothing with re-binarization.
func Enhance(m *image.Gray, edgeEnhancement, colorAware bool) *image.Gray {
	if edgeEnhancement {
		m = EnhanceEdges(m)
	}
	if colorAware {
		m = Smooth(m)
	}
	return m
}

// EnhanceEdges blends the Sobel gradient magnitude into the mask so fine
// foreground detail survives binarization.
func EnhanceEdges(m *image.Gray) *image.Gray {
	gx := imaging.Convolve3x3(m, sobelX, &imaging.ConvolveOptions{Abs: true})
	gy := imaging.Convolve3x3(m, sobelY, &imaging.ConvolveOptions{Abs: true})

	bounds := m.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	magnitude := make([]float64, width*height)
	maxMag := 0.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := float64(gx.Pix[y*gx.Stride+x*4])
			v := float64(gy.Pix[y*gy.Stride+x*4])
			mag := math.Sqrt(h*h + v*v)
			magnitude[y*width+x] = mag
			if mag > maxMag {
				maxMag = mag
			}
		}
	}

	out := image.NewGray(bounds)
	copy(out.Pix, m.Pix)
	if maxMag == 0 {
		return out
	}

	for i, mag := range magnitude {
		edge := uint8(mag / maxMag * 255)
		if edge > out.Pix[i] {
			out.Pix[i] = edge
		}
	}
	return out
}

// Smooth runs a light Gaussian blur over the mask and re-binarizes it,
// cleaning up ragged edges left by thresholding.
func Smooth(m *image.Gray) *image.Gray {
	blurred := FromImage(imaging.Blur(m, 0.5))
	out := image.NewGray(blurred.Bounds())
	for i, v := range blurred.Pix {
		if v > 127 {
			out.Pix[i] = 255
		}
	}
	return out
}
