package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/nbx-labs/nbx/internal/bootstrap"
	"github.com/nbx-labs/nbx/internal/config"
	"github.com/nbx-labs/nbx/internal/installer"
	"github.com/nbx-labs/nbx/internal/profile"
)

// resolveSessionRoot returns the explicit dir argument, or the working
// directory when none was given.
func resolveSessionRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// activeProfile resolves the profile for a session root. Precedence:
// the --profile flag, then the NBX_PROFILE / config key, then the
// project's nbx.yaml selection, then the builtin default.
func activeProfile(sessionRoot, flagName string) (*profile.Profile, error) {
	set, err := profile.Load(sessionRoot)
	if err != nil {
		return nil, err
	}
	name := set.Active
	if v := config.Get(config.KeyProfile); v != "" {
		name = v
	}
	if flagName != "" {
		name = flagName
	}
	p, err := set.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// buildBootstrapper wires a Bootstrapper from the resolved profile and any
// config overrides.
func buildBootstrapper(sessionRoot string, p *profile.Profile, opts ...bootstrap.Option) *bootstrap.Bootstrapper {
	kernel := p.Kernel
	if v := config.Get(config.KeyKernel); v != "" {
		kernel = v
	}

	installCmd, installArgs := installerCommand(p)

	all := append([]bootstrap.Option{
		bootstrap.WithKernel(kernel),
		bootstrap.WithInstaller(installer.New(installCmd, installArgs...)),
	}, opts...)
	return bootstrap.New(sessionRoot, all...)
}

// installerCommand returns the install command line for a profile, honoring
// the config override. The override is a full command line and is split the
// same way a profile's installer declaration is.
func installerCommand(p *profile.Profile) (string, []string) {
	if v := config.Get(config.KeyInstaller); v != "" {
		if fields := strings.Fields(v); len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return p.InstallerCommand()
}
