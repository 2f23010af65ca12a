package models

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// StageTimings captures per-stage durations for one background-removal run.
type StageTimings struct {
	RunID       string
	Decode      time.Duration
	Resize      time.Duration
	Preprocess  time.Duration
	Inference   time.Duration
	Postprocess time.Duration
	Composite   time.Duration
	Total       time.Duration
}

func NewStageTimings() *StageTimings {
	return &StageTimings{RunID: ksuid.New().String()}
}

func (t *StageTimings) String() string {
	return fmt.Sprintf("RunID: %s - Processing times:\n"+
		"\tImage Decode: %v\n"+
		"\tResize:      %v\n"+
		"\tPreprocess:  %v\n"+
		"\tInference:   %v\n"+
		"\tPostprocess: %v\n"+
		"\tComposite:   %v\n"+
		"\tTotal:       %v",
		t.RunID,
		t.Decode,
		t.Resize,
		t.Preprocess,
		t.Inference,
		t.Postprocess,
		t.Composite,
		t.Total)
}

// Options are the mask post-processing switches shared by the CLIs.
type Options struct {
	Threshold       float64
	EdgeEnhancement bool
	ColorAware      bool
}

func DefaultOptions() Options {
	return Options{
		Threshold:       0.35,
		EdgeEnhancement: true,
		ColorAware:      true,
	}
}

// Result describes the files produced for one input image.
type Result struct {
	MaskPath      string
	CompositePath string
	Width         int
	Height        int
	Timings       *StageTimings
}
