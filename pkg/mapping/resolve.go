// Package mapping expands resource glob patterns into the files that make
// up each archive and where they land inside it.
package mapping

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/sfpublish/pkg/api"
)

// Mapper resolves patterns relative to the directory given to New.
// Absolute patterns ignore it.
type Mapper struct {
	root string
	fsys fs.FS
}

// New creates a Mapper rooted at dir.
func New(dir string) *Mapper {
	return &Mapper{root: dir, fsys: os.DirFS(dir)}
}

// ResolveAll resolves every spec in order.
func (m *Mapper) ResolveAll(specs []api.ResourceSpec) ([]api.ResolvedResource, error) {
	resources := make([]api.ResolvedResource, 0, len(specs))
	for _, spec := range specs {
		res, err := m.Resolve(spec)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// Resolve expands spec.Files into a set of unique source paths in first-seen
// order, drops anything matched by spec.Exclude and computes each file's
// archive path. File contents are never read.
func (m *Mapper) Resolve(spec api.ResourceSpec) (api.ResolvedResource, error) {
	included, err := m.globAll(spec.Files)
	if err != nil {
		return api.ResolvedResource{}, &api.ConfigurationError{Resource: spec.Name, Err: err}
	}

	excluded, err := m.globAll(spec.Exclude)
	if err != nil {
		return api.ResolvedResource{}, &api.ConfigurationError{Resource: spec.Name, Err: fmt.Errorf("exclude: %w", err)}
	}
	skip := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		skip[e] = true
	}

	files := make([]api.ResolvedFile, 0, len(included))
	for _, source := range included {
		if skip[source] {
			continue
		}
		files = append(files, api.ResolvedFile{
			SourcePath:  source,
			ArchivePath: ArchivePath(source, spec.BasePath),
		})
	}

	slog.Debug("resolved resource", "resource", spec.Name, "files", len(files), "excluded", len(included)-len(files))

	return api.ResolvedResource{
		Name:         spec.Name,
		CacheControl: spec.CacheControl,
		Files:        files,
	}, nil
}

// ArchivePath strips basePath from source once when source starts with it.
func ArchivePath(source, basePath string) string {
	if basePath != "" && strings.HasPrefix(source, basePath) {
		return source[len(basePath):]
	}
	return source
}

func (m *Mapper) globAll(patterns []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := m.glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			result = append(result, match)
		}
	}
	return result, nil
}

func (m *Mapper) glob(pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	}
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if escapesRoot(pattern) {
		return m.globOutside(pattern)
	}
	return doublestar.Glob(m.fsys, pattern, doublestar.WithFilesOnly())
}

// escapesRoot reports whether a slash-separated pattern starts above the root,
// where the root's fs.FS cannot reach.
func escapesRoot(pattern string) bool {
	cleaned := path.Clean(pattern)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}

// globOutside expands a pattern that climbs out of the root on the real
// filesystem and reports matches relative to the root, the way they were
// written, so basePath prefixes like "../dist/" still apply.
func (m *Mapper) globOutside(pattern string) ([]string, error) {
	absRoot, err := filepath.Abs(m.root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(absRoot, filepath.FromSlash(pattern)), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(absRoot, match)
		if err != nil {
			return nil, fmt.Errorf("computing relative path for %s: %w", match, err)
		}
		result = append(result, filepath.ToSlash(rel))
	}
	return result, nil
}
