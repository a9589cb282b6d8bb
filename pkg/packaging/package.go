// Package packaging turns a resolved resource into a single zip artifact.
package packaging

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"
	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/zeebo/blake3"
)

// DebugDir is where debug copies of archives are written, relative to the root.
const DebugDir = "tmp"

// archiveEpoch is stamped on every entry so identical inputs give identical archives.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Packager builds archives from files below root.
type Packager struct {
	root  string
	debug bool
}

// Option configures a Packager.
type Option func(*Packager)

// WithDebug writes a raw copy of each archive under DebugDir and logs
// every file added.
func WithDebug(enabled bool) Option {
	return func(p *Packager) { p.debug = enabled }
}

// New creates a Packager that reads relative source paths from root.
func New(root string, opts ...Option) *Packager {
	p := &Packager{root: root}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PackageAll packages every resource, stopping at the first error.
func (p *Packager) PackageAll(resources []api.ResolvedResource) ([]api.Artifact, error) {
	artifacts := make([]api.Artifact, 0, len(resources))
	for _, res := range resources {
		a, err := p.Package(res)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Package zips res.Files into a fresh archive keyed by archive path.
// A resource with no files is a configuration error.
func (p *Packager) Package(res api.ResolvedResource) (api.Artifact, error) {
	if len(res.Files) == 0 {
		return api.Artifact{}, &api.ConfigurationError{Resource: res.Name, Err: errors.New("matched no files")}
	}

	raw, err := p.archive(res)
	if err != nil {
		return api.Artifact{}, fmt.Errorf("packaging resource %q: %w", res.Name, err)
	}

	if p.debug {
		p.writeDebugCopy(res.Name, raw)
	}

	digest := blake3.Sum256(raw)
	artifact := api.Artifact{
		FullName:     res.Name,
		Content:      base64.StdEncoding.EncodeToString(raw),
		ContentType:  api.ContentTypeZip,
		CacheControl: res.CacheControl,
		Digest:       hex.EncodeToString(digest[:]),
		Size:         len(raw),
	}

	slog.Info("packaged resource",
		"resource", res.Name,
		"files", len(res.Files),
		"size", humanize.Bytes(uint64(len(raw))),
		"digest", artifact.Digest[:12])

	return artifact, nil
}

func (p *Packager) archive(res api.ResolvedResource) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make(map[string]string, len(res.Files))
	for _, f := range res.Files {
		name := entryName(f.ArchivePath)
		if name == "" {
			return nil, &api.ConfigurationError{
				Resource: res.Name,
				Err:      fmt.Errorf("source %s maps to an empty archive path", f.SourcePath),
			}
		}
		if prev, ok := names[name]; ok {
			return nil, &api.ConfigurationError{
				Resource: res.Name,
				Err:      fmt.Errorf("sources %s and %s both map to %s", prev, f.SourcePath, name),
			}
		}
		names[name] = f.SourcePath

		if p.debug {
			slog.Info("adding file", "resource", res.Name, "source", f.SourcePath, "entry", name)
		}

		data, err := readSource(p.sourcePath(f.SourcePath))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.SourcePath, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("creating entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Packager) sourcePath(source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(p.root, filepath.FromSlash(source))
}

// entryName turns an archive path into a zip entry name: forward slashes,
// no leading slash.
func entryName(archivePath string) string {
	return strings.TrimLeft(filepath.ToSlash(archivePath), "/")
}
