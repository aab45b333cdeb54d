package profile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"
)

// ProjectFile is the optional per-project profile declaration at the
// session root.
const ProjectFile = "nbx.yaml"

// DefaultName is the profile activated when no explicit choice is made.
const DefaultName = "full"

//go:embed profiles.yaml
var builtinBytes []byte

// Package is a pinned entry in a profile's package set. Provisioning the
// package is the external provider's job; the pin only declares intent and
// lets doctor report what is missing from PATH.
type Package struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	// Executable is the binary the package is expected to put on PATH.
	// Empty for library-only packages.
	Executable string `yaml:"executable,omitempty"`
}

// Profile names a devshell variant: the kernel it bootstraps, the tool that
// installs it, and the package set the shell is built from.
type Profile struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Kernel      string    `yaml:"kernel"`
	Installer   string    `yaml:"installer"`
	Packages    []Package `yaml:"packages,omitempty"`
}

type profileFile struct {
	Profile  string    `yaml:"profile,omitempty"`
	Profiles []Profile `yaml:"profiles,omitempty"`
}

// InstallerCommand splits the installer declaration into command and args.
func (p *Profile) InstallerCommand() (string, []string) {
	fields := strings.Fields(p.Installer)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Validate checks the profile for structural problems: a missing kernel or
// installer, duplicate packages, and version pins that are not valid semver
// constraints.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if p.Kernel == "" {
		return fmt.Errorf("profile %s: kernel is required", p.Name)
	}
	if p.Installer == "" {
		return fmt.Errorf("profile %s: installer is required", p.Name)
	}

	seen := make(map[string]bool, len(p.Packages))
	for _, pkg := range p.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("profile %s: package with no name", p.Name)
		}
		if seen[pkg.Name] {
			return fmt.Errorf("profile %s: duplicate package %s", p.Name, pkg.Name)
		}
		seen[pkg.Name] = true
		if pkg.Version == "" {
			continue
		}
		if _, err := semver.NewConstraint(pkg.Version); err != nil {
			return fmt.Errorf("profile %s: package %s: invalid version pin %q: %w", p.Name, pkg.Name, pkg.Version, err)
		}
	}
	return nil
}

// Set is a resolved collection of profiles plus the name chosen as active.
type Set struct {
	Active   string
	Profiles []Profile
}

// Builtin returns the embedded default profile set.
func Builtin() (*Set, error) {
	var f profileFile
	if err := yaml.Unmarshal(builtinBytes, &f); err != nil {
		return nil, fmt.Errorf("parsing builtin profiles: %w", err)
	}
	return &Set{Active: DefaultName, Profiles: f.Profiles}, nil
}

// Load returns the builtin set overlaid with the project's nbx.yaml, if one
// exists at the session root. Project profiles with a builtin name replace
// the builtin; new names are appended. A `profile:` key in nbx.yaml selects
// the active profile.
func Load(sessionRoot string) (*Set, error) {
	set, err := Builtin()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(sessionRoot, ProjectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, p := range f.Profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		set.upsert(p)
	}
	if f.Profile != "" {
		if _, err := set.Lookup(f.Profile); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		set.Active = f.Profile
	}
	return set, nil
}

// Lookup returns the profile with the given name.
func (s *Set) Lookup(name string) (*Profile, error) {
	for i := range s.Profiles {
		if s.Profiles[i].Name == name {
			return &s.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(s.Names(), ", "))
}

// ActiveProfile returns the currently selected profile.
func (s *Set) ActiveProfile() (*Profile, error) {
	return s.Lookup(s.Active)
}

// Names returns the profile names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Profiles))
	for i, p := range s.Profiles {
		names[i] = p.Name
	}
	return names
}

func (s *Set) upsert(p Profile) {
	for i := range s.Profiles {
		if s.Profiles[i].Name == p.Name {
			s.Profiles[i] = p
			return
		}
	}
	s.Profiles = append(s.Profiles, p)
}
