package packaging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugPath returns where the debug copy of resource name is written.
func (p *Packager) DebugPath(name string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return filepath.Join(p.root, DebugDir, safe+".zip")
}

// writeDebugCopy is best effort: failures are logged and the artifact is
// unaffected.
func (p *Packager) writeDebugCopy(name string, raw []byte) {
	target := p.DebugPath(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		slog.Warn("failed to create debug directory", "path", filepath.Dir(target), "error", err)
		return
	}
	if err := os.WriteFile(target, raw, 0o600); err != nil {
		slog.Warn("failed to write debug archive", "path", target, "error", err)
		return
	}
	slog.Info("wrote debug archive", "resource", name, "path", target)
}
