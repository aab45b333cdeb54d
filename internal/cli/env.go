package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nbx-labs/nbx/internal/kernelspec"
)

var envShell string

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", "bash", "Shell dialect for the export line (bash, zsh, fish)")
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env [dir]",
	Short: "Print the kernel search-path export without bootstrapping",
	Long: `Print the export line a bootstrap of the given session root (default: the
working directory) would produce. Nothing is created, installed, or moved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionRoot, err := resolveSessionRoot(args)
		if err != nil {
			return err
		}
		value, err := kernelspec.ExportValue(sessionRoot)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), exportLine(envShell, kernelspec.SearchPathVar, value))
		return nil
	},
}
