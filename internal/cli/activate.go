package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nbx-labs/nbx/internal/bootstrap"
	"github.com/nbx-labs/nbx/internal/branding"
)

var (
	activateIdempotent bool
	activateProfile    string
)

func init() {
	activateCmd.Flags().BoolVar(&activateIdempotent, "idempotent", false, "Treat an already-bootstrapped session root as success")
	activateCmd.Flags().StringVar(&activateProfile, "profile", "", "Devshell profile to activate (overrides "+branding.EnvVar("PROFILE")+" and config)")
	rootCmd.AddCommand(activateCmd)
}

var activateCmd = &cobra.Command{
	Use:   "activate [dir]",
	Short: "Bootstrap a session root with progress output",
	Long: `Run the environment bootstrap for a session root (default: the working
directory), printing each step. Unlike 'hook', a failed step makes the
command exit non-zero.

The bootstrap is one-shot: re-activating a session root whose local kernel
registry is already populated fails unless --idempotent is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionRoot, err := resolveSessionRoot(args)
		if err != nil {
			return err
		}

		p, err := activeProfile(sessionRoot, activateProfile)
		if err != nil {
			return err
		}

		opts := []bootstrap.Option{bootstrap.WithProgress(cmd.OutOrStdout())}
		if activateIdempotent {
			opts = append(opts, bootstrap.WithGuard())
		}
		b := buildBootstrapper(sessionRoot, p, opts...)

		fmt.Fprintf(cmd.OutOrStdout(), "Activating profile %q in %s\n", p.Name, sessionRoot)
		if err := b.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nKernel %q is ready.\n", b.Kernel())
		return nil
	},
}
