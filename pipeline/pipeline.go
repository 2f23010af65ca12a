// Package pipeline wraps the hub-distributed RMBG-1.4 model in an
// image-segmentation pipeline: artifact resolution, preprocessing with the
// model's normalization, a variable-shape inference session, and min-max
// rescaling of the output into a mask.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/morostick/rmbg/hub"
	"github.com/morostick/rmbg/mask"
	"github.com/morostick/rmbg/models"
)

const (
	inputSize     = 1024
	retryAttempts = 3
	retryDelayMs  = 100

	// RMBG-1.4's feature extractor normalizes with mean 0.5, std 1.0.
	normMean = 0.5
	normStd  = 1.0
)

type Pipeline struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// Load builds a pipeline from a hub reference or a local model path. Hub
// references are resolved through the cache in cacheDir.
func Load(ctx context.Context, ref, cacheDir string) (*Pipeline, error) {
	modelPath := ref
	if _, err := os.Stat(ref); err != nil {
		modelPath, err = hub.NewClient("").Resolve(ctx, ref, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("resolve model %s: %w", ref, err)
		}
	}
	return New(modelPath)
}

// New opens a pipeline over a local ONNX artifact.
func New(modelPath string) (*Pipeline, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("error reading model metadata: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", modelPath)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &Pipeline{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

func (p *Pipeline) Close() {
	if p.session != nil {
		p.session.Destroy()
	}
}

// Predict returns the foreground mask for img at its original dimensions.
func (p *Pipeline) Predict(ctx context.Context, img image.Image, timings *models.StageTimings) (*image.Gray, error) {
	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			m, err := p.predictOnce(img, timings)
			if err == nil {
				return m, nil
			}
			lastErr = err

			if attempt < retryAttempts {
				time.Sleep(time.Duration(attempt) * retryDelayMs * time.Millisecond)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("unknown error")
}

func (p *Pipeline) predictOnce(img image.Image, timings *models.StageTimings) (*image.Gray, error) {
	resizeStart := time.Now()
	resized := imaging.Resize(img, inputSize, inputSize, imaging.Lanczos)
	timings.Resize = time.Since(resizeStart)

	prepStart := time.Now()
	data := normalize(resized)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, inputSize, inputSize), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, inputSize, inputSize))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outputTensor.Destroy()
	timings.Preprocess = time.Since(prepStart)

	inferStart := time.Now()
	if err := p.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}
	timings.Inference = time.Since(inferStart)

	postStart := time.Now()
	m := rescaleToMask(outputTensor.GetData(), inputSize, inputSize)
	m = mask.Resize(m, img.Bounds().Dx(), img.Bounds().Dy())
	timings.Postprocess = time.Since(postStart)

	return m, nil
}

// normalize converts an image to NCHW float32 with the pipeline's mean/std.
func normalize(img *image.NRGBA) []float32 {
	channelSize := inputSize * inputSize
	data := make([]float32, 3*channelSize)
	for y := 0; y < inputSize; y++ {
		row := img.Pix[y*img.Stride:]
		offset := y * inputSize
		for x := 0; x < inputSize; x++ {
			i := offset + x
			p := x * 4
			data[i] = (float32(row[p])/255.0 - normMean) / normStd
			data[channelSize+i] = (float32(row[p+1])/255.0 - normMean) / normStd
			data[channelSize*2+i] = (float32(row[p+2])/255.0 - normMean) / normStd
		}
	}
	return data
}

// rescaleToMask min-max scales raw model output into an 8-bit mask, the same
// rescaling the hub pipeline applies to RMBG-1.4 logits.
func rescaleToMask(data []float32, width, height int) *image.Gray {
	mi, ma := data[0], data[0]
	for _, v := range data {
		if v < mi {
			mi = v
		}
		if v > ma {
			ma = v
		}
	}

	m := image.NewGray(image.Rect(0, 0, width, height))
	if ma == mi {
		return m
	}

	scale := 255.0 / (ma - mi)
	for i, v := range data {
		m.Pix[i] = uint8((v - mi) * scale)
	}
	return m
}
