package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/IvanShishkin/buildid/internal/config"
	"github.com/IvanShishkin/buildid/internal/filesystem"
	"github.com/IvanShishkin/buildid/pkg/models"
	"go.uber.org/zap"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Extractor maps a file to its Build ID by trying backends in priority order
type Extractor struct {
	config   *config.Config
	logger   *zap.Logger
	runner   Runner
	rules    *models.RuleSet
	backends []Backend
}

// Option customizes an Extractor
type Option func(*Extractor)

// WithRunner replaces the command runner used by all subprocess backends
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithRules replaces the classification rules
func WithRules(rs *models.RuleSet) Option {
	return func(e *Extractor) {
		if rs != nil {
			e.rules = rs
		}
	}
}

// New creates an extractor with the file, readelf and objdump backends
// registered, plus the native backend when enabled in the config
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		config: cfg,
		logger: logger,
		runner: ExecRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rules == nil {
		rules, err := LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		e.rules = rules
	}

	e.RegisterBackend(NewFileBackend(cfg.Tools.File, e.runner, cfg.ExtractTimeout))
	e.RegisterBackend(NewReadelfBackend(cfg.Tools.Readelf, e.runner, cfg.ExtractTimeout))
	e.RegisterBackend(NewObjdumpBackend(cfg.Tools.Objdump, e.runner, cfg.ExtractTimeout))

	native := NewNativeBackend()
	native.SetEnabled(cfg.Native)
	e.RegisterBackend(native)

	return e, nil
}

// RegisterBackend adds a backend, keeping the list ordered by priority
func (e *Extractor) RegisterBackend(b Backend) {
	e.backends = append(e.backends, b)
	sort.SliceStable(e.backends, func(i, j int) bool {
		return e.backends[i].Priority() > e.backends[j].Priority()
	})
	e.logger.Debug("Registered backend",
		zap.String("name", b.Name()),
		zap.Int("priority", b.Priority()),
		zap.Bool("enabled", b.IsEnabled()))
}

// Backends returns the registered backends in execution order
func (e *Extractor) Backends() []Backend {
	return e.backends
}

// ExtractBuildID returns the Build ID of the file at path along with the name
// of the backend that produced it. ok is false when path is not a regular
// file or every backend abstained.
func (e *Extractor) ExtractBuildID(ctx context.Context, path string) (buildID string, backend string, ok bool) {
	if !isRegularFile(path) {
		return "", "", false
	}

	for _, b := range e.backends {
		if !b.IsEnabled() {
			continue
		}

		outcome := b.Extract(ctx, path)
		if outcome.OK() {
			e.logger.Debug("Build ID extracted",
				zap.String("path", path),
				zap.String("backend", b.Name()),
				zap.String("buildid", outcome.BuildID))
			return outcome.BuildID, b.Name(), true
		}

		e.logger.Debug("Backend abstained",
			zap.String("path", path),
			zap.String("backend", b.Name()),
			zap.String("reason", outcome.Reason))
	}

	return "", "", false
}

// GetFileInfo describes the file at path. It always returns a populated
// FileInfo, falling back to defaults when identification fails.
func (e *Extractor) GetFileInfo(ctx context.Context, path string) models.FileInfo {
	info := models.NewFileInfo()

	out, err := runTool(ctx, e.runner, e.config.InfoTimeout, e.config.Tools.File, path)
	if err != nil {
		e.logger.Debug("File identification failed",
			zap.String("path", path),
			zap.Error(err))
	} else {
		Classify(e.rules, strings.ToLower(trimPathPrefix(out, path)), &info)
	}

	if stat, err := os.Stat(path); err == nil {
		info.FileSize = stat.Size()
	}

	return info
}

// ShouldProcessFile reports whether path is a regular file that looks like a
// library by name, including versioned names like libfoo.so.1.2, or is ELF
func (e *Extractor) ShouldProcessFile(path string) bool {
	if !isRegularFile(path) {
		return false
	}

	if e.config.HasLibraryExtension(filepath.Base(path)) {
		return true
	}

	return IsELFFile(path)
}

// IsELFFile reports whether the file starts with the ELF magic bytes. Read
// errors and short files count as not ELF.
func IsELFFile(path string) bool {
	header, err := filesystem.ReadHeader(path, len(elfMagic))
	if err != nil {
		return false
	}
	return bytes.Equal(header, elfMagic)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// trimPathPrefix drops the "<path>: " prefix file(1) puts before its
// description so that directory names cannot match classification rules
func trimPathPrefix(out, path string) string {
	prefix := fmt.Sprintf("%s:", path)
	if strings.HasPrefix(out, prefix) {
		return out[len(prefix):]
	}
	return out
}
