// Command rmbgbench smoke-tests both background-removal backends end to end
// and reports a timing and output-size comparison between them.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/morostick/rmbg/config"
	"github.com/morostick/rmbg/imageio"
	"github.com/morostick/rmbg/mask"
	"github.com/morostick/rmbg/models"
	"github.com/morostick/rmbg/pipeline"
	"github.com/morostick/rmbg/segmentation"
)

type benchResult struct {
	name       string
	outputPath string
	elapsed    time.Duration
	timings    *models.StageTimings
	width      int
	height     int
}

func main() {
	log.SetFlags(log.LstdFlags)

	input := flag.String("input", "", "input image path or URL (default: generated test image)")
	outDir := flag.String("outdir", "./output", "directory for benchmark outputs")
	onnxModel := flag.String("model", "", "path to the RMBG-2.0 ONNX model (default from RMBG_ONNX_MODEL)")
	hubRef := flag.String("ref", "", "hub reference for the RMBG-1.4 model (default from RMBG_HUB_REF)")
	flag.Parse()

	cfg := config.Load()
	if *onnxModel == "" {
		*onnxModel = cfg.OnnxModelPath
	}
	if *hubRef == "" {
		*hubRef = cfg.HubRef
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	ctx := context.Background()

	src := *input
	if src == "" {
		src = filepath.Join(*outDir, "test_photo.png")
		if err := imageio.SavePNG(makeTestImage(), src); err != nil {
			log.Fatalf("Failed to create test image: %v", err)
		}
		log.Printf("Created test image at %s", src)
	}

	img, err := imageio.Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load input image: %v", err)
	}
	flattened := imageio.FlattenOnWhite(img)

	if err := segmentation.Initialize(cfg.OrtLibPath); err != nil {
		log.Fatalf("Failed to initialize ONNX environment: %v", err)
	}
	defer segmentation.Shutdown()

	v2, err := runOnnxBackend(ctx, *onnxModel, flattened, filepath.Join(*outDir, "test_photo_nobg_v2.png"))
	if err != nil {
		log.Fatalf("RMBG-2.0 run failed: %v", err)
	}
	log.Printf("RMBG-2.0 completed in %.2f seconds", v2.elapsed.Seconds())

	v1, err := runPipelineBackend(ctx, *hubRef, cfg.ModelDir, flattened, filepath.Join(*outDir, "test_photo_nobg_v1.png"))
	if err != nil {
		log.Fatalf("RMBG-1.4 run failed: %v", err)
	}
	log.Printf("RMBG-1.4 completed in %.2f seconds", v1.elapsed.Seconds())

	if err := verify(v1, flattened); err != nil {
		log.Fatalf("Smoke check failed for %s: %v", v1.name, err)
	}
	if err := verify(v2, flattened); err != nil {
		log.Fatalf("Smoke check failed for %s: %v", v2.name, err)
	}

	printComparison(v1, v2)
}

func runOnnxBackend(ctx context.Context, modelPath string, img image.Image, output string) (*benchResult, error) {
	session, err := segmentation.NewSession(modelPath)
	if err != nil {
		return nil, err
	}
	defer session.Destroy()

	timings := models.NewStageTimings()
	start := time.Now()

	m, err := segmentation.Predict(ctx, img, session, timings)
	if err != nil {
		return nil, err
	}
	if err := imageio.SavePNG(mask.Composite(img, m), output); err != nil {
		return nil, err
	}

	return &benchResult{
		name:       "RMBG-2.0",
		outputPath: output,
		elapsed:    time.Since(start),
		timings:    timings,
		width:      img.Bounds().Dx(),
		height:     img.Bounds().Dy(),
	}, nil
}

func runPipelineBackend(ctx context.Context, ref, cacheDir string, img image.Image, output string) (*benchResult, error) {
	pipe, err := pipeline.Load(ctx, ref, cacheDir)
	if err != nil {
		return nil, err
	}
	defer pipe.Close()

	timings := models.NewStageTimings()
	start := time.Now()

	m, err := pipe.Predict(ctx, img, timings)
	if err != nil {
		return nil, err
	}
	m = mask.Threshold(m, 0.35)
	m = mask.Enhance(m, true, true)
	if err := imageio.SavePNG(mask.Composite(img, m), output); err != nil {
		return nil, err
	}

	return &benchResult{
		name:       "RMBG-1.4",
		outputPath: output,
		elapsed:    time.Since(start),
		timings:    timings,
		width:      img.Bounds().Dx(),
		height:     img.Bounds().Dy(),
	}, nil
}

// verify checks the produced file is a decodable PNG with the input's
// dimensions.
func verify(r *benchResult, input image.Image) error {
	out, err := imageio.Load(context.Background(), r.outputPath)
	if err != nil {
		return err
	}
	if out.Bounds().Dx() != input.Bounds().Dx() || out.Bounds().Dy() != input.Bounds().Dy() {
		return fmt.Errorf("output is %dx%d, input was %dx%d",
			out.Bounds().Dx(), out.Bounds().Dy(), input.Bounds().Dx(), input.Bounds().Dy())
	}
	return nil
}

func printComparison(v1, v2 *benchResult) {
	fmt.Println("\nComparison Results:")
	for _, r := range []*benchResult{v1, v2} {
		size := int64(0)
		if info, err := os.Stat(r.outputPath); err == nil {
			size = info.Size()
		}
		fmt.Printf("%s: %.2f seconds, output %.1f KB, %dx%d (inference %v)\n",
			r.name, r.elapsed.Seconds(), float64(size)/1024.0, r.width, r.height, r.timings.Inference)
	}

	diff := v1.elapsed - v2.elapsed
	pct := 0.0
	if v1.elapsed > 0 {
		pct = diff.Seconds() / v1.elapsed.Seconds() * 100
	}
	fmt.Printf("Difference: %.2f seconds (%.1f%%)\n", diff.Seconds(), pct)
}

// makeTestImage draws a red disc on a blue background, enough structure for
// an end-to-end smoke run without shipping a photo.
func makeTestImage() image.Image {
	const size = 512
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-size/2), float64(y-size/2)
			if dx*dx+dy*dy < 200*200 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}
