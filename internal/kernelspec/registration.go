package kernelspec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Registration is a parsed kernel.json document: the executable adapter a
// notebook front-end launches to execute code in a given language.
type Registration struct {
	Argv          []string          `json:"argv"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
	Env           map[string]string `json:"env,omitempty"`

	// Name is the registry directory name, filled in by Load/List.
	Name string `json:"-"`
}

// Load reads the kernel.json inside a registration directory.
func Load(dir string) (*Registration, error) {
	path := filepath.Join(dir, RegistrationFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registration %s: %w", path, err)
	}

	var reg Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing registration %s: %w", path, err)
	}
	reg.Name = filepath.Base(dir)
	return &reg, nil
}

// Exists reports whether a registration directory with a kernel.json is
// present at dir.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, RegistrationFile))
	return err == nil && !info.IsDir()
}

// List enumerates the registrations inside a registry directory, sorted by
// name. Subdirectories without a kernel.json are skipped. A missing registry
// yields an empty list, not an error.
func List(registryDir string) ([]*Registration, error) {
	entries, err := os.ReadDir(registryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", registryDir, err)
	}

	var regs []*Registration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(registryDir, entry.Name())
		if !Exists(dir) {
			continue
		}
		reg, err := Load(dir)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs, nil
}
