package installer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Default install tool: the evcxr Jupyter kernel installer registers the
// "rust" kernel into the per-user global registry.
const (
	DefaultCommand = "evcxr_jupyter"
	DefaultArg     = "--install"
)

// Installer invokes an external tool that writes a kernel registration into
// the global registry. The zero value is not usable; call New.
type Installer struct {
	command string
	args    []string
}

// New returns an Installer for the given command. With no command, the
// evcxr installer is used.
func New(command string, args ...string) *Installer {
	if command == "" {
		command = DefaultCommand
		args = []string{DefaultArg}
	}
	return &Installer{command: command, args: args}
}

// Command returns the install command line for display.
func (i *Installer) Command() string {
	return strings.Join(append([]string{i.command}, i.args...), " ")
}

// Install runs the install tool to completion. The subprocess's combined
// output is captured; on non-zero exit it is returned inside an *ExitError.
// There are no retries and no timeout beyond ctx.
func (i *Installer) Install(ctx context.Context) error {
	bin, err := exec.LookPath(i.command)
	if err != nil {
		return fmt.Errorf("locating install tool %s: %w", i.command, err)
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, i.args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{
				Cmd:      i.Command(),
				ExitCode: exitErr.ExitCode(),
				Output:   output.String(),
			}
		}
		return fmt.Errorf("running install tool %s: %w", i.command, err)
	}
	return nil
}

// ExitError reports a non-zero exit from the install tool, carrying its
// captured output for diagnostics.
type ExitError struct {
	Cmd      string
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}
