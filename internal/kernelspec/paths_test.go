package kernelspec

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGlobalRegistry_EnvOverride(t *testing.T) {
	t.Setenv("JUPYTER_DATA_DIR", "/tmp/jupyter-data")
	dir, err := GlobalRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/tmp/jupyter-data", "kernels")
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestGlobalRegistry_LinuxDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux layout only")
	}
	t.Setenv("JUPYTER_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "")
	dir, err := GlobalRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".local", "share", "jupyter", "kernels")
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestGlobalRegistry_XDGDataHome(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG layout only")
	}
	t.Setenv("JUPYTER_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dir, err := GlobalRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/tmp/xdg-data", "jupyter", "kernels")
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestLocalRegistry(t *testing.T) {
	got := LocalRegistry("/work/project")
	want := filepath.Join("/work/project", ".jupyter", "kernels")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestExportValue(t *testing.T) {
	tmp := t.TempDir()
	got, err := ExportValue(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(tmp, ".jupyter")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("export value %q is not absolute", got)
	}
	if strings.HasSuffix(got, string(filepath.Separator)) {
		t.Errorf("export value %q has a trailing separator", got)
	}
}

func TestExportValue_RelativeRoot(t *testing.T) {
	got, err := ExportValue(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cwd, _ := os.Getwd()
	want := filepath.Join(cwd, ".jupyter")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
