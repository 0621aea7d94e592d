package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/IvanShishkin/buildid/internal/config"
	"github.com/IvanShishkin/buildid/internal/extractor"
	"github.com/IvanShishkin/buildid/internal/filesystem"
	"github.com/IvanShishkin/buildid/pkg/models"
	"go.uber.org/zap"
)

var (
	// ErrPathNotFound is returned when the scan path does not exist
	ErrPathNotFound = errors.New("path does not exist")

	// ErrNoCandidates is returned when discovery finds no library-like files
	ErrNoCandidates = errors.New("no library files found")

	// ErrNoBuildIDs is returned when no candidate yields a Build ID
	ErrNoBuildIDs = errors.New("no Build IDs extracted")
)

// Progress phases
const (
	PhaseDiscover = "discover"
	PhaseExtract  = "extract"
)

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// Scanner drives discovery and extraction over a path
type Scanner struct {
	config           *config.Config
	logger           *zap.Logger
	extractor        *extractor.Extractor
	walker           *filesystem.Walker
	progressCallback ProgressCallback
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, logger *zap.Logger, ext *extractor.Extractor) *Scanner {
	return &Scanner{
		config:    cfg,
		logger:    logger,
		extractor: ext,
		walker:    filesystem.NewWalker(cfg, logger, ext.ShouldProcessFile),
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// Scan discovers candidates under path and extracts their Build IDs in
// discovery order. The returned results are populated even when the error is
// ErrNoCandidates or ErrNoBuildIDs. Cancellation is checked between files and
// returns the partial results with the context error.
func (s *Scanner) Scan(ctx context.Context, path string) (*models.ScanResults, error) {
	results := &models.ScanResults{
		StartTime: time.Now(),
		ScanPath:  path,
		Recursive: s.config.Recursive,
		Results:   make([]*models.ExtractionResult, 0),
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}

	s.logger.Info("Starting scan",
		zap.String("path", path),
		zap.Bool("recursive", s.config.Recursive),
		zap.String("format", s.config.Format))

	s.reportProgress(PhaseDiscover, 0, 0, "Discovering files...")
	candidates := s.walker.Discover(path, s.config.Recursive)
	results.Candidates = len(candidates)
	s.reportProgress(PhaseDiscover, len(candidates), len(candidates), fmt.Sprintf("Found %d candidate files", len(candidates)))

	if len(candidates) == 0 {
		s.finish(results)
		return results, ErrNoCandidates
	}

	needInfo := s.config.NeedsFileInfo()
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Scan interrupted",
				zap.Int("processed", i),
				zap.Int("total", len(candidates)))
			s.finish(results)
			return results, err
		}

		res, format := s.processFile(ctx, candidate, needInfo)
		results.AddResult(res)
		if !res.HasBuildID() {
			results.AddMissingFormat(format)
		}
		s.reportProgress(PhaseExtract, i+1, len(candidates), candidate)
	}

	s.finish(results)

	if results.Found == 0 {
		return results, ErrNoBuildIDs
	}
	return results, nil
}

// processFile extracts the Build ID of path. When every backend abstains the
// file is sniffed and its format label returned for the summary.
func (s *Scanner) processFile(ctx context.Context, path string, needInfo bool) (*models.ExtractionResult, string) {
	res := &models.ExtractionResult{
		File: path,
		Info: models.NewFileInfo(),
	}

	buildID, backend, ok := s.extractor.ExtractBuildID(ctx, path)
	if !ok {
		format := extractor.Sniff(path)
		s.logger.Debug("No Build ID",
			zap.String("path", path),
			zap.String("format", format))
		return res, format
	}

	res.BuildID = &buildID
	res.Backend = backend
	if needInfo {
		res.Info = s.extractor.GetFileInfo(ctx, path)
	}
	return res, ""
}

func (s *Scanner) finish(results *models.ScanResults) {
	results.EndTime = time.Now()
	results.Duration = results.EndTime.Sub(results.StartTime)

	s.logger.Info("Scan completed",
		zap.Duration("duration", results.Duration),
		zap.Int("candidates", results.Candidates),
		zap.Int("found", results.Found),
		zap.Int("missing", len(results.Missing)),
		zap.Any("missing_formats", results.MissingFormats),
		zap.Any("by_backend", results.ByBackend))
}
