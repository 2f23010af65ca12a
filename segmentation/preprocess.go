package segmentation

import (
	"image"
	"runtime"
	"sync"
)

// fillInput writes an image into an NCHW float32 buffer, scaling pixel
// values to [0,1]. The RMBG-2.0 export expects plain /255 scaling with no
// mean/std normalization. Rows are split across workers; images backed by an
// NRGBA pixel buffer take a direct-access fast path.
func fillInput(pic image.Image, buffer []float32) {
	channelSize := InputSize * InputSize
	numWorkers := runtime.GOMAXPROCS(0)
	rowsPerWorker := InputSize / numWorkers
	if rowsPerWorker == 0 {
		rowsPerWorker = InputSize
		numWorkers = 1
	}

	nrgba, fast := pic.(*image.NRGBA)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if w == numWorkers-1 {
			endY = InputSize
		}

		go func(startY, endY int) {
			defer wg.Done()
			if fast {
				fillRowsNRGBA(nrgba, buffer, channelSize, startY, endY)
				return
			}
			fillRowsGeneric(pic, buffer, channelSize, startY, endY)
		}(startY, endY)
	}

	wg.Wait()
}

func fillRowsNRGBA(img *image.NRGBA, buffer []float32, channelSize, startY, endY int) {
	for y := startY; y < endY; y++ {
		row := img.Pix[y*img.Stride:]
		offset := y * InputSize
		for x := 0; x < InputSize; x++ {
			i := offset + x
			p := x * 4
			buffer[i] = float32(row[p]) / 255.0
			buffer[channelSize+i] = float32(row[p+1]) / 255.0
			buffer[channelSize*2+i] = float32(row[p+2]) / 255.0
		}
	}
}

func fillRowsGeneric(pic image.Image, buffer []float32, channelSize, startY, endY int) {
	for y := startY; y < endY; y++ {
		offset := y * InputSize
		for x := 0; x < InputSize; x++ {
			i := offset + x
			r, g, b, _ := pic.At(x, y).RGBA()
			buffer[i] = float32(r>>8) / 255.0
			buffer[channelSize+i] = float32(g>>8) / 255.0
			buffer[channelSize*2+i] = float32(b>>8) / 255.0
		}
	}
}
