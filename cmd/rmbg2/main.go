// Command rmbg2 removes the background from images with the RMBG-2.0 ONNX
// export. It writes an RGBA composite plus the raw alpha mask next to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/morostick/rmbg/config"
	"github.com/morostick/rmbg/imageio"
	"github.com/morostick/rmbg/mask"
	"github.com/morostick/rmbg/models"
	"github.com/morostick/rmbg/segmentation"
)

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var inputs multiFlag
	flag.Var(&inputs, "input", "input image path or URL (repeatable)")
	flag.Var(&inputs, "i", "shorthand for -input")
	output := flag.String("output", "", "output image path (default <input>_nobg.png)")
	modelPath := flag.String("model", "", "path to the ONNX model (default from RMBG_ONNX_MODEL)")
	flag.Parse()
	inputs = append(inputs, flag.Args()...)

	if len(inputs) == 0 {
		log.Fatal("no input image given, use -input")
	}
	if *output != "" && len(inputs) > 1 {
		log.Fatal("-output can only be combined with a single -input")
	}

	cfg := config.Load()
	if *modelPath == "" {
		*modelPath = cfg.OnnxModelPath
	}

	if err := segmentation.Initialize(cfg.OrtLibPath); err != nil {
		log.Fatalf("Failed to initialize ONNX environment: %v", err)
	}
	defer segmentation.Shutdown()

	ctx := context.Background()

	if len(inputs) == 1 {
		session, err := segmentation.NewSession(*modelPath)
		if err != nil {
			log.Fatalf("Failed to create model session: %v", err)
		}
		defer session.Destroy()

		dest := *output
		if dest == "" {
			dest = imageio.DefaultOutputPath(inputs[0])
		}
		result, err := removeBackground(ctx, session, inputs[0], dest, cfg.Debug)
		if err != nil {
			log.Fatalf("Error processing image: %v", err)
		}
		log.Printf("Saved output to %s and mask to %s", result.CompositePath, result.MaskPath)
		return
	}

	pool, err := segmentation.NewSessionPool(func() (*segmentation.ModelSession, error) {
		return segmentation.NewSession(*modelPath)
	}, cfg.PoolSize)
	if err != nil {
		log.Fatalf("Failed to create model session pool: %v", err)
	}
	defer pool.Destroy()

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()

			session, err := pool.Acquire(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", input, err)
				return
			}
			defer pool.Release(session)

			result, err := removeBackground(ctx, session, input, imageio.DefaultOutputPath(input), cfg.Debug)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", input, err)
				return
			}
			log.Printf("Saved output to %s and mask to %s", result.CompositePath, result.MaskPath)
		}(i, input)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			log.Printf("Error processing image: %v", err)
		}
	}
	if failed > 0 {
		log.Fatalf("%d of %d images failed", failed, len(inputs))
	}
}

func removeBackground(ctx context.Context, session *segmentation.ModelSession, input, output string, debug bool) (*models.Result, error) {
	timings := models.NewStageTimings()
	start := time.Now()

	decodeStart := time.Now()
	img, err := imageio.Load(ctx, input)
	if err != nil {
		return nil, err
	}
	timings.Decode = time.Since(decodeStart)

	flattened := imageio.FlattenOnWhite(img)
	log.Printf("Processing image of size %dx%d", flattened.Bounds().Dx(), flattened.Bounds().Dy())

	m, err := segmentation.Predict(ctx, flattened, session, timings)
	if err != nil {
		return nil, err
	}

	compositeStart := time.Now()
	cutout := mask.Composite(flattened, m)
	timings.Composite = time.Since(compositeStart)

	if err := imageio.SavePNG(cutout, output); err != nil {
		return nil, err
	}
	maskPath := imageio.MaskPath(output)
	if err := imageio.SavePNG(m, maskPath); err != nil {
		return nil, err
	}

	timings.Total = time.Since(start)
	if debug {
		log.Printf("[DEBUG] %s", timings)
	}

	return &models.Result{
		MaskPath:      maskPath,
		CompositePath: output,
		Width:         flattened.Bounds().Dx(),
		Height:        flattened.Bounds().Dy(),
		Timings:       timings,
	}, nil
}
