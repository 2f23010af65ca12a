package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "./models", cfg.ModelDir)
	assert.Equal(t, filepath.Join("./models", "model_q4f16.onnx"), cfg.OnnxModelPath)
	assert.Equal(t, "briaai/RMBG-1.4", cfg.HubRef)
	assert.Equal(t, 2, cfg.PoolSize)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RMBG_MODEL_DIR", "/opt/models")
	t.Setenv("RMBG_ONNX_MODEL", "/opt/models/custom.onnx")
	t.Setenv("RMBG_HUB_REF", "someorg/other-model")
	t.Setenv("RMBG_POOL_SIZE", "4")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	assert.Equal(t, "/opt/models", cfg.ModelDir)
	assert.Equal(t, "/opt/models/custom.onnx", cfg.OnnxModelPath)
	assert.Equal(t, "someorg/other-model", cfg.HubRef)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.True(t, cfg.Debug)
}

func TestLoadInvalidPoolSizeFallsBack(t *testing.T) {
	t.Setenv("RMBG_POOL_SIZE", "zero")

	cfg := Load()
	assert.Equal(t, 2, cfg.PoolSize)
}
