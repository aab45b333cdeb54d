package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nbx-labs/nbx/internal/installer"
	"github.com/nbx-labs/nbx/internal/kernelspec"
	"github.com/nbx-labs/nbx/internal/platform"
)

// Terminal bootstrap failures. None are retried. Callers match with errors.Is.
var (
	// ErrDirectoryCreation: the local kernels directory could not be
	// created, or already exists with content from an earlier activation.
	ErrDirectoryCreation = errors.New("creating local kernels directory")

	// ErrKernelInstall: the install tool could not be run at all.
	ErrKernelInstall = errors.New("installing kernel")

	// ErrRelocation: the global registration is missing or could not be
	// moved into the local registry.
	ErrRelocation = errors.New("relocating kernel registration")
)

// KernelInstaller abstracts the external install tool for testing.
type KernelInstaller interface {
	// Install runs the tool to completion, capturing its output.
	Install(ctx context.Context) error
	// Command returns the install command line for display.
	Command() string
}

// Bootstrapper prepares one session root. Construct with New; Run is meant
// to be called once per shell activation.
type Bootstrapper struct {
	sessionRoot    string
	kernel         string
	installer      KernelInstaller
	globalRegistry string
	guard          bool
	progress       io.Writer
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithKernel sets the registration name the installer produces.
// Defaults to kernelspec.DefaultKernelName.
func WithKernel(name string) Option {
	return func(b *Bootstrapper) { b.kernel = name }
}

// WithInstaller replaces the default evcxr installer.
func WithInstaller(i KernelInstaller) Option {
	return func(b *Bootstrapper) { b.installer = i }
}

// WithGlobalRegistry overrides the global registry location. Used by tests
// and by doctor --fix; the default is resolved via kernelspec.GlobalRegistry.
func WithGlobalRegistry(dir string) Option {
	return func(b *Bootstrapper) { b.globalRegistry = dir }
}

// WithGuard turns a re-bootstrap of an already-populated session root into a
// no-op success instead of a hard ErrDirectoryCreation failure.
func WithGuard() Option {
	return func(b *Bootstrapper) { b.guard = true }
}

// WithProgress sets the writer for step-by-step progress lines.
func WithProgress(w io.Writer) Option {
	return func(b *Bootstrapper) { b.progress = w }
}

// New returns a Bootstrapper for the given session root.
func New(sessionRoot string, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		sessionRoot: sessionRoot,
		kernel:      kernelspec.DefaultKernelName,
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.installer == nil {
		b.installer = installer.New("")
	}
	return b
}

// Kernel returns the registration name this bootstrapper manages.
func (b *Bootstrapper) Kernel() string { return b.kernel }

// LocalKernelDir returns the destination registration directory.
func (b *Bootstrapper) LocalKernelDir() string {
	return filepath.Join(kernelspec.LocalRegistry(b.sessionRoot), b.kernel)
}

// Run executes the bootstrap procedure: create the local registry, install
// the kernel globally, relocate the registration, export the search path.
// Any step failing aborts the remaining steps; there is no rollback.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if b.guard && kernelspec.Exists(b.LocalKernelDir()) {
		fmt.Fprintf(b.progress, "  [SKIP] %s already bootstrapped\n", b.LocalKernelDir())
		return b.export()
	}

	if err := b.createLocalRegistry(); err != nil {
		return err
	}
	installErr := b.install(ctx)
	if installErr != nil && !errors.As(installErr, new(*installer.ExitError)) {
		// The tool could not be run at all; a non-zero exit is tolerated
		// until the move step checks for the registration.
		return fmt.Errorf("%w: %w", ErrKernelInstall, installErr)
	}
	if err := b.relocate(installErr); err != nil {
		return err
	}
	return b.export()
}

// createLocalRegistry creates <sessionRoot>/.jupyter/kernels. An existing
// non-empty directory means a previous activation already claimed this
// session root, which is a hard failure without the guard option.
func (b *Bootstrapper) createLocalRegistry() error {
	dir := kernelspec.LocalRegistry(b.sessionRoot)

	if entries, err := os.ReadDir(dir); err == nil {
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s already exists and is not empty", ErrDirectoryCreation, dir)
		}
		fmt.Fprintf(b.progress, "  [SKIP] %s already exists (empty)\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDirectoryCreation, dir, err)
	}
	fmt.Fprintf(b.progress, "  [ OK ] Created %s\n", dir)
	return nil
}

// install runs the external tool that registers the kernel in the global
// registry. Its output and exit code are captured into the returned error.
func (b *Bootstrapper) install(ctx context.Context) error {
	fmt.Fprintf(b.progress, "  [ .. ] Running %s\n", b.installer.Command())
	if err := b.installer.Install(ctx); err != nil {
		fmt.Fprintf(b.progress, "  [WARN] %v\n", err)
		return err
	}
	fmt.Fprintf(b.progress, "  [ OK ] Installed kernel %q into global registry\n", b.kernel)
	return nil
}

// relocate moves the global registration into the local registry. The global
// registry is treated strictly as a transient staging area: after a
// successful move the kernel exists only under the session root.
func (b *Bootstrapper) relocate(installErr error) error {
	globalReg := b.globalRegistry
	if globalReg == "" {
		var err error
		globalReg, err = kernelspec.GlobalRegistry()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRelocation, err)
		}
	}

	src := filepath.Join(globalReg, b.kernel)
	if _, err := os.Stat(src); err != nil {
		if installErr != nil {
			// Surface the captured installer diagnostics instead of a
			// bare missing-source error.
			return fmt.Errorf("%w: %s not found after failed install: %w", ErrRelocation, src, installErr)
		}
		return fmt.Errorf("%w: %s: %w", ErrRelocation, src, err)
	}

	dst := b.LocalKernelDir()
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: destination %s already exists", ErrRelocation, dst)
	}
	if err := platform.Move(src, dst); err != nil {
		return fmt.Errorf("%w: moving %s to %s: %w", ErrRelocation, src, dst, err)
	}
	fmt.Fprintf(b.progress, "  [ OK ] Relocated %s -> %s\n", src, dst)
	return nil
}

// export sets the kernel search-path variable for the remainder of the
// process and reports the exported value.
func (b *Bootstrapper) export() error {
	value, err := kernelspec.ExportValue(b.sessionRoot)
	if err != nil {
		return err
	}
	if err := os.Setenv(kernelspec.SearchPathVar, value); err != nil {
		return fmt.Errorf("setting %s: %w", kernelspec.SearchPathVar, err)
	}
	fmt.Fprintf(b.progress, "  [ OK ] %s=%s\n", kernelspec.SearchPathVar, value)
	return nil
}
