package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nbx-labs/nbx/internal/config"
	"github.com/nbx-labs/nbx/internal/profile"
)

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect devshell profiles",
	Long:  `List and inspect the named devshell profiles (builtin plus any declared in the project's nbx.yaml).`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := resolveSessionRoot(nil)
		if err != nil {
			return err
		}
		set, err := profile.Load(cwd)
		if err != nil {
			return err
		}

		active := set.Active
		if v := config.Get(config.KeyProfile); v != "" {
			active = v
		}

		for _, p := range set.Profiles {
			marker := " "
			if p.Name == active {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", marker, p.Name, p.Description)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's kernel and package pins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := resolveSessionRoot(nil)
		if err != nil {
			return err
		}
		set, err := profile.Load(cwd)
		if err != nil {
			return err
		}
		p, err := set.Lookup(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Profile:   %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(w, "About:     %s\n", p.Description)
		}
		fmt.Fprintf(w, "Kernel:    %s\n", p.Kernel)
		fmt.Fprintf(w, "Installer: %s\n", p.Installer)

		if len(p.Packages) == 0 {
			return nil
		}
		fmt.Fprintln(w, "Packages:")
		for _, pkg := range sortedPackages(p.Packages) {
			if pkg.Version != "" {
				fmt.Fprintf(w, "  %-14s %s\n", pkg.Name, pkg.Version)
			} else {
				fmt.Fprintf(w, "  %s\n", pkg.Name)
			}
		}
		return nil
	},
}

// sortedPackages returns the package set in collated display order without
// mutating the profile.
func sortedPackages(pkgs []profile.Package) []profile.Package {
	out := make([]profile.Package, len(pkgs))
	copy(out, pkgs)

	c := collate.New(language.English)
	names := make([]string, len(out))
	for i, p := range out {
		names[i] = p.Name
	}
	byName := make(map[string]profile.Package, len(out))
	for _, p := range out {
		byName[p.Name] = p
	}
	c.SortStrings(names)
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}
