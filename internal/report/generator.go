package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/IvanShishkin/buildid/internal/config"
	"github.com/IvanShishkin/buildid/pkg/models"
	"go.uber.org/zap"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		// Milliseconds
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		// Seconds
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		// Minutes and seconds
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	// Hours, minutes and seconds
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator writes formatted reports to stdout or a file
type Generator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewGenerator creates a new report generator. out receives the report when
// no output file is configured; nil means os.Stdout.
func NewGenerator(cfg *config.Config, logger *zap.Logger, out io.Writer) *Generator {
	if out == nil {
		out = os.Stdout
	}
	return &Generator{
		config: cfg,
		logger: logger,
		out:    out,
	}
}

// Generate renders results in the configured format and writes them to the
// configured destination. It returns the absolute path of the written file,
// or an empty string when the report went to the writer.
func (g *Generator) Generate(results *models.ScanResults) (string, error) {
	outputFile := g.config.OutputFile

	g.logger.Info("Generating report",
		zap.String("format", g.config.Format),
		zap.String("output", outputFile),
		zap.Int("results", results.Found),
		zap.String("elapsed", FormatDuration(results.Duration)))

	if err := g.Write(results.Results, g.config.Format, outputFile); err != nil {
		return "", err
	}

	if outputFile == "" {
		return "", nil
	}

	absPath, err := filepath.Abs(outputFile)
	if err != nil {
		return outputFile, nil
	}
	return absPath, nil
}

// Write formats results in mode and writes them to output. An empty output
// prints to the writer with a trailing newline; a file gets the report as is.
func (g *Generator) Write(results []*models.ExtractionResult, mode, output string) error {
	text, err := Format(results, mode)
	if err != nil {
		return err
	}

	if output == "" {
		if _, err := fmt.Fprintln(g.out, text); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
