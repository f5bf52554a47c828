package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Resolve under PolicyRequire when none of the
// candidate files exist.
var ErrNotFound = errors.New("no config file found")

// MissingPolicy decides what Resolve does when no candidate file exists.
type MissingPolicy int

const (
	// PolicyRequire fails with ErrNotFound.
	PolicyRequire MissingPolicy = iota
	// PolicyDefaults falls back to Default().
	PolicyDefaults
)

// ParsePolicy maps the --missing-config flag values onto a policy.
func ParsePolicy(s string) (MissingPolicy, error) {
	switch s {
	case "fail", "":
		return PolicyRequire, nil
	case "defaults":
		return PolicyDefaults, nil
	}
	return 0, fmt.Errorf("unknown missing-config policy %q (want fail or defaults)", s)
}

func (p MissingPolicy) String() string {
	if p == PolicyDefaults {
		return "defaults"
	}
	return "fail"
}

var fileNames = []string{"config.toml", "config.yml", "config.yaml"}

// SearchPaths returns the candidate files in lookup order: the user config
// directory, /etc/usage-bar, then the working directory.
func SearchPaths() []string {
	var dirs []string
	if d, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(d, "usage-bar"))
	}
	dirs = append(dirs, "/etc/usage-bar", ".")

	paths := make([]string, 0, len(dirs)*len(fileNames))
	for _, d := range dirs {
		for _, name := range fileNames {
			paths = append(paths, filepath.Join(d, name))
		}
	}
	return paths
}

// Resolve loads the first existing file among paths. It returns the path
// that was used, or "" when the defaults were substituted.
func Resolve(paths []string, policy MissingPolicy) (Config, string, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Default(), p, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			continue
		}
		cfg, err := Load(p)
		return cfg, p, err
	}

	if policy == PolicyDefaults {
		return Default(), "", nil
	}
	return Default(), "", fmt.Errorf("%w (searched %d locations)", ErrNotFound, len(paths))
}
