package segmentation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/morostick/rmbg/mask"
	"github.com/morostick/rmbg/models"
)

type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

// Predict runs the model over one image and returns the foreground mask at
// the image's original dimensions. Transient failures are retried with a
// linear backoff.
func Predict(ctx context.Context, img image.Image, model *ModelSession, timings *models.StageTimings) (*image.Gray, error) {
	var lastErr error

	for attempt := 1; attempt <= RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			m, err := predictOnce(img, model, timings)
			if err == nil {
				return m, nil
			}
			lastErr = err

			if attempt < RetryAttempts {
				time.Sleep(time.Duration(attempt) * RetryDelayMs * time.Millisecond)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, &ProcessingError{Message: "inference failed", Cause: lastErr}
	}
	return nil, errors.New("unknown error")
}

func predictOnce(img image.Image, model *ModelSession, timings *models.StageTimings) (*image.Gray, error) {
	resizeStart := time.Now()
	resized := imaging.Resize(img, InputSize, InputSize, imaging.Lanczos)
	timings.Resize = time.Since(resizeStart)

	prepStart := time.Now()
	fillInput(resized, model.Input.GetData())
	timings.Preprocess = time.Since(prepStart)

	inferStart := time.Now()
	if err := model.Session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}
	timings.Inference = time.Since(inferStart)

	postStart := time.Now()
	m, err := maskFromTensor(model.Output.GetData(), img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return nil, fmt.Errorf("postprocess mask: %w", err)
	}
	timings.Postprocess = time.Since(postStart)

	return m, nil
}

// maskFromTensor converts the 1x1xHxW model output into an 8-bit mask and
// restores the original image dimensions.
func maskFromTensor(data []float32, origWidth, origHeight int) (*image.Gray, error) {
	if len(data) != InputSize*InputSize {
		return nil, fmt.Errorf("unexpected output length: got %d, want %d", len(data), InputSize*InputSize)
	}

	m := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	for i, v := range data {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		m.Pix[i] = uint8(v * 255)
	}

	return mask.Resize(m, origWidth, origHeight), nil
}
