package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nbx-labs/nbx/internal/bootstrap"
	"github.com/nbx-labs/nbx/internal/branding"
	"github.com/nbx-labs/nbx/internal/kernelspec"
)

var (
	hookShell      string
	hookStrict     bool
	hookIdempotent bool
	hookProfile    string
)

func init() {
	hookCmd.Flags().StringVar(&hookShell, "shell", "bash", "Shell dialect for the emitted export line (bash, zsh, fish)")
	hookCmd.Flags().BoolVar(&hookStrict, "strict", false, "Exit non-zero when the bootstrap fails")
	hookCmd.Flags().BoolVar(&hookIdempotent, "idempotent", false, "Treat an already-bootstrapped session root as success")
	hookCmd.Flags().StringVar(&hookProfile, "profile", "", "Devshell profile to activate (overrides "+branding.EnvVar("PROFILE")+" and config)")
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Bootstrap the working directory and emit shell exports",
	Long: `Run the environment bootstrap against the current working directory and
print eval-able export lines on stdout. Intended for shell activation:

  eval "$(nbx hook)"                 # bash/zsh
  nbx hook --shell fish | source     # fish

A bootstrap failure is reported on stderr but the hook still exits 0 so shell
startup continues; the kernel is simply unavailable. Use --strict to make
failures fatal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		p, err := activeProfile(cwd, hookProfile)
		if err != nil {
			return hookFail(cmd, err)
		}

		var opts []bootstrap.Option
		if hookIdempotent {
			opts = append(opts, bootstrap.WithGuard())
		}
		b := buildBootstrapper(cwd, p, opts...)

		if err := b.Run(cmd.Context()); err != nil {
			return hookFail(cmd, err)
		}

		value, err := kernelspec.ExportValue(cwd)
		if err != nil {
			return hookFail(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), exportLine(hookShell, kernelspec.SearchPathVar, value))
		return nil
	},
}

// hookFail reports a bootstrap failure without breaking shell startup,
// unless --strict was given.
func hookFail(cmd *cobra.Command, err error) error {
	if hookStrict {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: bootstrap failed: %v\n", rootCmd.Name(), err)
	return nil
}

// exportLine renders a single environment export in the given shell dialect.
func exportLine(shell, key, value string) string {
	switch shell {
	case "fish":
		return fmt.Sprintf("set -gx %s '%s'", key, value)
	default: // bash, zsh
		return fmt.Sprintf("export %s='%s'", key, value)
	}
}
