package kernelspec

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Directory name constants for the registry layout.
const (
	// LocalDir is the project-scoped directory created under the session
	// root. Its kernels/ subdirectory is the local registry.
	LocalDir = ".jupyter"

	// KernelsDir holds one subdirectory per registered kernel.
	KernelsDir = "kernels"

	// RegistrationFile is the document that makes a directory a registration.
	RegistrationFile = "kernel.json"

	// DefaultKernelName is the registration name the default installer
	// (evcxr_jupyter) writes into the global registry.
	DefaultKernelName = "rust"
)

// GlobalRegistry returns the path to the per-user global kernel registry.
// It checks the JUPYTER_DATA_DIR environment variable first, then falls
// back to the platform convention: ~/Library/Jupyter on macOS,
// %APPDATA%\jupyter on Windows, and $XDG_DATA_HOME/jupyter (default
// ~/.local/share/jupyter) elsewhere.
func GlobalRegistry() (string, error) {
	if v := os.Getenv("JUPYTER_DATA_DIR"); v != "" {
		return filepath.Join(v, KernelsDir), nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Jupyter", KernelsDir), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "jupyter", KernelsDir), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "jupyter", KernelsDir), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", "jupyter", KernelsDir), nil
	}
}

// LocalRegistry returns the project-local kernel registry for a session root:
// <sessionRoot>/.jupyter/kernels.
func LocalRegistry(sessionRoot string) string {
	return filepath.Join(sessionRoot, LocalDir, KernelsDir)
}

// ExportValue returns the value the kernel search-path variable must be set
// to for a session root: the absolute path of <sessionRoot>/.jupyter, with
// no trailing separator.
func ExportValue(sessionRoot string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(sessionRoot, LocalDir))
	if err != nil {
		return "", fmt.Errorf("resolving session root %s: %w", sessionRoot, err)
	}
	return filepath.Clean(abs), nil
}

// SearchPathVar is the environment variable Jupyter front-ends consult for
// additional data directories.
const SearchPathVar = "JUPYTER_PATH"
