package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nbx-labs/nbx/internal/installer"
	"github.com/nbx-labs/nbx/internal/kernelspec"
)

// fakeInstaller stands in for the external install tool. It counts
// invocations and, unless told to fail, writes a registration into the
// configured global registry.
type fakeInstaller struct {
	registry string
	kernel   string
	fail     error
	calls    int
}

func (f *fakeInstaller) Command() string { return "fake-installer --install" }

func (f *fakeInstaller) Install(_ context.Context) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	dir := filepath.Join(f.registry, f.kernel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	spec := `{"argv": ["evcxr_jupyter", "--control_file", "{connection_file}"], "display_name": "Rust", "language": "rust"}`
	return os.WriteFile(filepath.Join(dir, "kernel.json"), []byte(spec), 0644)
}

func newTestBootstrapper(t *testing.T, fail error, opts ...Option) (*Bootstrapper, *fakeInstaller, string) {
	t.Helper()
	sessionRoot := t.TempDir()
	globalReg := filepath.Join(t.TempDir(), "jupyter", "kernels")
	fake := &fakeInstaller{registry: globalReg, kernel: "rust", fail: fail}

	all := append([]Option{
		WithInstaller(fake),
		WithGlobalRegistry(globalReg),
	}, opts...)
	return New(sessionRoot, all...), fake, sessionRoot
}

func TestRun_HappyPath(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	b, fake, sessionRoot := newTestBootstrapper(t, nil)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	localKernel := filepath.Join(sessionRoot, ".jupyter", "kernels", "rust")
	if !kernelspec.Exists(localKernel) {
		t.Errorf("expected registration at %s", localKernel)
	}
	if _, err := os.Stat(filepath.Join(fake.registry, "rust")); !os.IsNotExist(err) {
		t.Errorf("global registration should have been relocated, stat err = %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("installer calls = %d, want 1", fake.calls)
	}
}

func TestRun_ExportsSearchPath(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	b, _, sessionRoot := newTestBootstrapper(t, nil)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want, err := kernelspec.ExportValue(sessionRoot)
	if err != nil {
		t.Fatal(err)
	}
	got := os.Getenv(kernelspec.SearchPathVar)
	if got != want {
		t.Errorf("%s = %q, want %q", kernelspec.SearchPathVar, got, want)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("export value %q is not absolute", got)
	}
	if strings.HasSuffix(got, string(filepath.Separator)) {
		t.Errorf("export value %q has a trailing separator", got)
	}
}

func TestRun_SecondInvocationFails(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	b, _, _ := newTestBootstrapper(t, nil)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	err := b.Run(context.Background())
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Errorf("second Run: err = %v, want ErrDirectoryCreation", err)
	}
}

func TestRun_GuardMakesRerunNoop(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	b, fake, _ := newTestBootstrapper(t, nil, WithGuard())

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := b.Run(context.Background()); err != nil {
		t.Errorf("guarded second Run failed: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("installer calls = %d, want 1 (guard should skip the second run)", fake.calls)
	}
}

func TestRun_MissingSourceAfterFailedInstall(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	installFailure := &installer.ExitError{Cmd: "fake-installer --install", ExitCode: 1, Output: "no cargo on PATH"}
	b, _, sessionRoot := newTestBootstrapper(t, installFailure)

	err := b.Run(context.Background())
	if !errors.Is(err, ErrRelocation) {
		t.Fatalf("err = %v, want ErrRelocation", err)
	}
	// The installer's captured diagnostics must survive into the chain.
	if !strings.Contains(err.Error(), "no cargo on PATH") {
		t.Errorf("error %q does not carry installer output", err)
	}

	// The local registry exists but is empty.
	entries, readErr := os.ReadDir(filepath.Join(sessionRoot, ".jupyter", "kernels"))
	if readErr != nil {
		t.Fatalf("local kernels dir missing: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("local kernels dir has %d entries, want 0", len(entries))
	}
}

func TestRun_MissingSourceAfterCleanInstall(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	sessionRoot := t.TempDir()
	globalReg := filepath.Join(t.TempDir(), "jupyter", "kernels")
	// Installer reports success but registers under a different name.
	fake := &fakeInstaller{registry: globalReg, kernel: "python3"}
	b := New(sessionRoot, WithInstaller(fake), WithGlobalRegistry(globalReg), WithKernel("rust"))

	err := b.Run(context.Background())
	if !errors.Is(err, ErrRelocation) {
		t.Errorf("err = %v, want ErrRelocation", err)
	}
}

func TestRun_UnwritableSessionRootSkipsInstall(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	tmp := t.TempDir()
	// A file where the session root should be makes directory creation fail
	// for any caller, root included.
	sessionRoot := filepath.Join(tmp, "project")
	if err := os.WriteFile(sessionRoot, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	globalReg := filepath.Join(tmp, "jupyter", "kernels")
	fake := &fakeInstaller{registry: globalReg, kernel: "rust"}
	b := New(sessionRoot, WithInstaller(fake), WithGlobalRegistry(globalReg))

	err := b.Run(context.Background())
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Errorf("err = %v, want ErrDirectoryCreation", err)
	}
	if fake.calls != 0 {
		t.Errorf("installer was invoked %d times after a failed step 1, want 0", fake.calls)
	}
}

func TestRun_InstallToolUnavailable(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	sessionRoot := t.TempDir()
	globalReg := filepath.Join(t.TempDir(), "jupyter", "kernels")
	b := New(sessionRoot,
		WithInstaller(installer.New("nbx-no-such-install-tool")),
		WithGlobalRegistry(globalReg))

	err := b.Run(context.Background())
	if !errors.Is(err, ErrKernelInstall) {
		t.Errorf("err = %v, want ErrKernelInstall", err)
	}
}

func TestRun_EmptyExistingRegistryTolerated(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	b, fake, sessionRoot := newTestBootstrapper(t, nil)

	// A pre-existing but empty local registry is not a failed activation.
	if err := os.MkdirAll(filepath.Join(sessionRoot, ".jupyter", "kernels"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Once populated, a re-run without the guard is a hard failure.
	if err := fake.Install(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := b.Run(context.Background())
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Errorf("err = %v, want ErrDirectoryCreation", err)
	}
}

func TestRun_ProgressOutput(t *testing.T) {
	t.Setenv(kernelspec.SearchPathVar, "")
	sessionRoot := t.TempDir()
	globalReg := filepath.Join(t.TempDir(), "jupyter", "kernels")
	fake := &fakeInstaller{registry: globalReg, kernel: "rust"}

	var buf bytes.Buffer
	b := New(sessionRoot,
		WithInstaller(fake),
		WithGlobalRegistry(globalReg),
		WithProgress(&buf))

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"[ OK ] Created", "[ OK ] Relocated", fmt.Sprintf("[ OK ] %s=", kernelspec.SearchPathVar)} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}
