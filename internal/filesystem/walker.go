package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/IvanShishkin/buildid/internal/config"
	"go.uber.org/zap"
)

// Filter decides whether a discovered path is a candidate
type Filter func(path string) bool

// Walker walks the filesystem and finds candidate files
type Walker struct {
	config  *config.Config
	logger  *zap.Logger
	filter  Filter
	exclude map[string]bool
}

// NewWalker creates a new filesystem walker
func NewWalker(cfg *config.Config, logger *zap.Logger, filter Filter) *Walker {
	// Build exclude map for fast lookup
	exclude := make(map[string]bool)
	for _, dir := range cfg.Exclude {
		exclude[dir] = true
	}

	return &Walker{
		config:  cfg,
		logger:  logger,
		filter:  filter,
		exclude: exclude,
	}
}

// Discover returns the candidate files under root. A file root is returned on
// its own if it passes the filter. For a directory, only immediate children
// are considered unless recursive is set. Access errors are logged and
// skipped, so the result may be partial.
func (w *Walker) Discover(root string, recursive bool) []string {
	info, err := os.Stat(root)
	if err != nil {
		w.logger.Warn("Error accessing path", zap.String("path", root), zap.Error(err))
		return nil
	}

	if !info.IsDir() {
		if w.accept(root) {
			return []string{root}
		}
		return nil
	}

	if recursive {
		return w.walk(root)
	}
	return w.list(root)
}

// list checks the immediate children of dir
func (w *Walker) list(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("Error listing directory", zap.String("path", dir), zap.Error(err))
		return nil
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if w.accept(path) {
			files = append(files, path)
		}
	}
	return files
}

// walk recursively walks the directory tree
func (w *Walker) walk(root string) []string {
	var files []string

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		if d.IsDir() {
			if path != root && w.shouldExclude(d.Name(), root, path) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}

		if w.accept(path) {
			files = append(files, path)
		}
		return nil
	})

	return files
}

func (w *Walker) accept(path string) bool {
	if w.filter == nil || w.filter(path) {
		return true
	}
	w.logger.Debug("Skipping file",
		zap.String("path", path),
		zap.String("extension", GetExtension(path)))
	return false
}

// shouldExclude checks if a directory should be excluded
func (w *Walker) shouldExclude(name, root, path string) bool {
	if len(w.exclude) == 0 {
		return false
	}

	// Check exact match
	if w.exclude[name] {
		return true
	}

	// Check if relative path contains excluded directory
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = path
	}
	for _, part := range strings.Split(relPath, string(os.PathSeparator)) {
		if w.exclude[part] {
			return true
		}
	}

	return false
}
