package processing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFilenames are tried in order in each directory.
var ConfigFilenames = []string{
	"sfpublish.yaml",
	"sfpublish.yml",
	"sfpublish.jsonc",
	"sfpublish.json",
}

// ErrConfigNotFound is returned when no configuration file exists in the
// start directory or any of its parents.
var ErrConfigNotFound = errors.New("no sfpublish configuration file found")

// DiscoverConfig looks for a configuration file in start and then in each
// parent directory, so the hook can run from any subdirectory of a project.
func DiscoverConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving start path: %w", err)
	}

	for {
		path, err := findIn(dir)
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched from %s)", ErrConfigNotFound, start)
		}
		dir = parent
	}
}

func findIn(dir string) (string, error) {
	for _, name := range ConfigFilenames {
		p := filepath.Join(dir, name)
		st, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
		if !st.IsDir() {
			return p, nil
		}
	}
	return "", nil
}
