package mask

import (
	"image"

	"github.com/disintegration/imaging"
)

// Composite applies a mask as the alpha channel of an image, producing the
// transparent-background cutout. The mask is resized to the image dimensions
// first when they differ.
func Composite(img image.Image, m *image.Gray) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	m = Resize(m, width, height)

	out := imaging.Clone(img)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Pix[y*out.Stride+x*4+3] = m.Pix[y*m.Stride+x]
		}
	}
	return out
}
