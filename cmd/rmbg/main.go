// Command rmbg generates a segmentation mask with the hub-distributed
// RMBG-1.4 model and applies the threshold/enhancement post-processing. Its
// primary output is the mask; pass -composite to also write the cutout.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/morostick/rmbg/config"
	"github.com/morostick/rmbg/imageio"
	"github.com/morostick/rmbg/mask"
	"github.com/morostick/rmbg/models"
	"github.com/morostick/rmbg/pipeline"
	"github.com/morostick/rmbg/segmentation"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	input := flag.String("input", "", "input image path or URL")
	output := flag.String("output", "", "output mask path (default <input>_mask.png)")
	modelRef := flag.String("model", "", "hub reference or local model path (default from RMBG_HUB_REF)")
	threshold := flag.Float64("threshold", 0.35, "mask binarization threshold (0-1)")
	edgeEnhancement := flag.Bool("edge-enhancement", true, "enhance edges for better detail")
	colorAware := flag.Bool("color-aware", true, "smooth and re-binarize the mask")
	composite := flag.String("composite", "", "optional path for the RGBA cutout")
	flag.Parse()

	if *input == "" {
		log.Fatal("no input image given, use -input")
	}
	if *threshold < 0 || *threshold > 1 {
		log.Fatalf("threshold must be in [0,1], got %v", *threshold)
	}

	cfg := config.Load()
	if *modelRef == "" {
		*modelRef = cfg.HubRef
	}
	if *output == "" {
		*output = imageio.MaskPath(imageio.DefaultOutputPath(*input))
	}

	if err := segmentation.Initialize(cfg.OrtLibPath); err != nil {
		log.Fatalf("Failed to initialize ONNX environment: %v", err)
	}
	defer segmentation.Shutdown()

	ctx := context.Background()

	pipe, err := pipeline.Load(ctx, *modelRef, cfg.ModelDir)
	if err != nil {
		log.Fatalf("Failed to load model %s: %v", *modelRef, err)
	}
	defer pipe.Close()

	opts := models.Options{
		Threshold:       *threshold,
		EdgeEnhancement: *edgeEnhancement,
		ColorAware:      *colorAware,
	}

	timings := models.NewStageTimings()
	start := time.Now()

	decodeStart := time.Now()
	img, err := imageio.Load(ctx, *input)
	if err != nil {
		log.Fatalf("Error loading image: %v", err)
	}
	timings.Decode = time.Since(decodeStart)

	flattened := imageio.FlattenOnWhite(img)
	log.Printf("Running inference on %s...", *input)

	m, err := pipe.Predict(ctx, flattened, timings)
	if err != nil {
		log.Fatalf("Error during inference: %v", err)
	}

	m = mask.Threshold(m, opts.Threshold)
	m = mask.Enhance(m, opts.EdgeEnhancement, opts.ColorAware)

	if err := imageio.SavePNG(m, *output); err != nil {
		log.Fatalf("Error saving mask: %v", err)
	}
	log.Printf("Mask saved to %s", *output)

	if *composite != "" {
		compositeStart := time.Now()
		cutout := mask.Composite(flattened, m)
		timings.Composite = time.Since(compositeStart)

		if err := imageio.SavePNG(cutout, *composite); err != nil {
			log.Fatalf("Error saving composite: %v", err)
		}
		log.Printf("Background removed image saved to %s", *composite)
	}

	timings.Total = time.Since(start)
	log.Printf("Inference completed in %.2f seconds", timings.Total.Seconds())
	if cfg.Debug {
		log.Printf("[DEBUG] %s", timings)
	}
}
