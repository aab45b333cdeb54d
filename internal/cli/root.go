package cli

import (
	"github.com/spf13/cobra"

	"github.com/nbx-labs/nbx/internal/branding"
	"github.com/nbx-labs/nbx/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` bootstraps a reproducible notebook environment for a project:
it installs a language kernel, relocates the registration into a project-local
registry, and exports the kernel search path so the notebook front-end picks
up the local kernel without touching per-user global state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
