package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ModelDir      string
	OnnxModelPath string
	HubRef        string
	OrtLibPath    string
	PoolSize      int
	Debug         bool
}

func Load() *Config {
	// Load .env file if it exists (useful for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, continuing with environment variables")
	}

	modelDir := getEnv("RMBG_MODEL_DIR", "./models")

	poolSizeStr := getEnv("RMBG_POOL_SIZE", "2")
	poolSize, err := strconv.Atoi(poolSizeStr)
	if err != nil || poolSize <= 0 {
		log.Printf("Invalid RMBG_POOL_SIZE value '%s', using default 2", poolSizeStr)
		poolSize = 2
	}

	return &Config{
		ModelDir:      modelDir,
		OnnxModelPath: getEnv("RMBG_ONNX_MODEL", filepath.Join(modelDir, "model_q4f16.onnx")),
		HubRef:        getEnv("RMBG_HUB_REF", "briaai/RMBG-1.4"),
		OrtLibPath:    getEnv("RMBG_ORT_LIB", ""),
		PoolSize:      poolSize,
		Debug:         getEnv("DEBUG", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
