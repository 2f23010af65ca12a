package segmentation

const (
	// InputSize is the square model input; the RMBG-2.0 export takes
	// 1024x1024 NCHW float32.
	InputSize     = 1024
	RetryAttempts = 3
	RetryDelayMs  = 100
)
