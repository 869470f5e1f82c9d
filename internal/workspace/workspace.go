package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tubeget/internal/logging"
)

// namePrefix marks every workspace directory so the stale sweep can tell
// them apart from anything else living in the base directory.
const namePrefix = "temp_"

// Workspace is the scoped temporary directory for one invocation's in-flight
// artifacts. It is owned by exactly one run and never shared.
type Workspace struct {
	Path   string
	logger *slog.Logger
}

// Open creates a uniquely named directory under baseDir. The name carries a
// second-resolution timestamp plus the reference's identifier when one was
// resolvable, or a short random suffix otherwise, so concurrent invocations
// never collide.
func Open(baseDir, referenceID string, logger *slog.Logger) (*Workspace, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("workspace base directory required")
	}

	suffix := strings.TrimSpace(referenceID)
	if suffix == "" {
		suffix = uuid.NewString()[:8]
	}
	name := namePrefix + time.Now().Format("20060102150405") + "_" + suffix
	path := filepath.Join(baseDir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %q: %w", path, err)
	}
	return &Workspace{Path: path, logger: logging.NewComponentLogger(logger, "workspace")}, nil
}

// Close recursively deletes the workspace. Deletion errors are logged as
// warnings and swallowed: cleanup must never mask the primary operation's
// outcome. Close is safe to call exactly once per workspace on every exit
// path.
func (w *Workspace) Close() {
	if w == nil || w.Path == "" {
		return
	}
	if err := os.RemoveAll(w.Path); err != nil {
		w.logger.Warn("failed to remove workspace",
			logging.String("path", w.Path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return
	}
	w.logger.Debug("workspace removed", logging.String("path", w.Path))
}

// MediaFiles returns the artifacts inside the workspace whose extension
// matches the configured output container, in lexical order.
func (w *Workspace) MediaFiles(container string) ([]string, error) {
	container = strings.TrimPrefix(strings.TrimSpace(container), ".")
	if container == "" {
		return nil, fmt.Errorf("output container required")
	}
	matches, err := filepath.Glob(filepath.Join(w.Path, "*."+container))
	if err != nil {
		return nil, fmt.Errorf("enumerate workspace media: %w", err)
	}
	return matches, nil
}

// SweepStale removes leftover workspace directories older than maxAge. An
// operator interrupt during a download strands its workspace; the next
// invocation reclaims it here. Errors are logged, never returned.
func SweepStale(baseDir string, maxAge time.Duration, logger *slog.Logger) {
	logger = logging.NewComponentLogger(logger, "workspace")
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to scan for stale workspaces", logging.Error(err))
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), namePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(baseDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove stale workspace",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		logger.Info("removed stale workspace",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
		)
	}
}

// DefaultBaseDir resolves the directory workspaces are created under: the
// directory holding the tubeget executable, falling back to the working
// directory when the executable path cannot be resolved.
func DefaultBaseDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
