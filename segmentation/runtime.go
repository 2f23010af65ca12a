package segmentation

import (
	"os"
	"path/filepath"
	"runtime"
)

// resolveSharedLibrary picks the onnxruntime shared library to load. An
// explicit path wins; otherwise conventional install locations are probed.
// Returning "" leaves onnxruntime_go's built-in default in place.
func resolveSharedLibrary(explicit string) string {
	if explicit != "" {
		return explicit
	}

	var names []string
	switch runtime.GOOS {
	case "darwin":
		names = []string{"libonnxruntime.dylib"}
	case "windows":
		names = []string{"onnxruntime.dll"}
	default:
		names = []string{"libonnxruntime.so", "libonnxruntime.so.1"}
	}

	dirs := []string{"./lib", "/usr/local/lib", "/usr/lib", "/opt/onnxruntime/lib"}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
