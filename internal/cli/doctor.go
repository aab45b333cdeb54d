package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nbx-labs/nbx/internal/bootstrap"
	"github.com/nbx-labs/nbx/internal/branding"
	"github.com/nbx-labs/nbx/internal/kernelspec"
	"github.com/nbx-labs/nbx/internal/profile"
)

var (
	doctorFix     bool
	doctorProfile string
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Re-run a guarded bootstrap to repair the session root")
	doctorCmd.Flags().StringVar(&doctorProfile, "profile", "", "Devshell profile to check against (overrides "+branding.EnvVar("PROFILE")+" and config)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [dir]",
	Short: "Health check for a bootstrapped session root",
	Long: `Check a session root (default: the working directory): the local kernel
registry, the registration document, the kernel search-path variable, and
the profile's package executables. With --fix, a guarded bootstrap is run
to repair a missing or empty local registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionRoot, err := resolveSessionRoot(args)
		if err != nil {
			return err
		}

		p, err := activeProfile(sessionRoot, doctorProfile)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		b := buildBootstrapper(sessionRoot, p)

		fmt.Fprintf(w, "Session root: %s (profile %q)\n\n", sessionRoot, p.Name)
		checkLocalRegistry(w, b, cmd, sessionRoot, p)
		checkGlobalLeftover(w, b.Kernel())
		checkSearchPath(w, sessionRoot)
		checkPackages(w, p)
		return nil
	},
}

// checkLocalRegistry verifies the relocated registration and, with --fix,
// re-runs a guarded bootstrap when it is missing.
func checkLocalRegistry(w io.Writer, b *bootstrap.Bootstrapper, cmd *cobra.Command, sessionRoot string, p *profile.Profile) {
	fmt.Fprintln(w, "Local registry:")
	kernelDir := b.LocalKernelDir()

	if !kernelspec.Exists(kernelDir) {
		fmt.Fprintf(w, "  [MISS] %s has no registration\n", kernelDir)
		if doctorFix {
			fmt.Fprintln(w, "  [FIX ] Running bootstrap...")
			fixed := buildBootstrapper(sessionRoot, p,
				bootstrap.WithGuard(), bootstrap.WithProgress(w))
			if err := fixed.Run(cmd.Context()); err != nil {
				fmt.Fprintf(w, "  [FAIL] %v\n", err)
			}
		} else {
			fmt.Fprintf(w, "         Run '%s activate' to bootstrap\n", rootCmd.Name())
		}
		return
	}

	result, err := kernelspec.ValidateDir(kernelDir)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	if !result.Valid {
		fmt.Fprintf(w, "  [WARN] %s/kernel.json has %d issue(s):\n", kernelDir, len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "         %s: %s\n", issue.Path, issue.Message)
		}
		return
	}

	reg, err := kernelspec.Load(kernelDir)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s (%s, language %s)\n", kernelDir, reg.DisplayName, reg.Language)
}

// checkGlobalLeftover warns when the global registry still carries the
// kernel; after a clean relocation it should not.
func checkGlobalLeftover(w io.Writer, kernel string) {
	fmt.Fprintln(w, "Global registry:")
	globalReg, err := kernelspec.GlobalRegistry()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	leftover := filepath.Join(globalReg, kernel)
	if kernelspec.Exists(leftover) {
		fmt.Fprintf(w, "  [WARN] %s still exists; relocation did not run or another install re-created it\n", leftover)
		return
	}
	fmt.Fprintf(w, "  [ OK ] no leftover registration for %q\n", kernel)
}

// checkSearchPath verifies the exported kernel search path.
func checkSearchPath(w io.Writer, sessionRoot string) {
	fmt.Fprintln(w, "Search path:")
	want, err := kernelspec.ExportValue(sessionRoot)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	got := os.Getenv(kernelspec.SearchPathVar)
	switch got {
	case want:
		fmt.Fprintf(w, "  [ OK ] %s=%s\n", kernelspec.SearchPathVar, got)
	case "":
		fmt.Fprintf(w, "  [MISS] %s is not set (expected %s)\n", kernelspec.SearchPathVar, want)
	default:
		fmt.Fprintf(w, "  [WARN] %s=%s (expected %s)\n", kernelspec.SearchPathVar, got, want)
	}
}

// checkPackages reports which of the profile's expected executables are on
// PATH. Provisioning is the external package provider's job; this only
// surfaces what is missing.
func checkPackages(w io.Writer, p *profile.Profile) {
	fmt.Fprintln(w, "Profile packages:")
	for _, pkg := range p.Packages {
		if pkg.Executable == "" {
			continue
		}
		path, err := exec.LookPath(pkg.Executable)
		if err != nil {
			fmt.Fprintf(w, "  [MISS] %s (%s not on PATH)\n", pkg.Name, pkg.Executable)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s -> %s\n", pkg.Name, path)
	}
}
