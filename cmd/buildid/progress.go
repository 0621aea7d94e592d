package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/IvanShishkin/buildid/internal/core"
)

// progress renders extraction progress on stderr. It stays silent unless
// enabled and there is more than one candidate.
type progress struct {
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool) *progress {
	return &progress{w: w, enabled: enabled}
}

func (p *progress) callback(phase string, current, total int, message string) {
	if !p.enabled {
		return
	}

	switch phase {
	case core.PhaseDiscover:
		if total > 1 && current == total && p.bar == nil {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription("Extracting"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionFullWidth(),
			)
		}
	case core.PhaseExtract:
		if p.bar != nil {
			_ = p.bar.Add(1)
		}
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func colored(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !isTerminal(w) {
		c.DisableColor()
	}
	return c
}

func printSuccess(w io.Writer, format string, args ...any) {
	colored(w, color.FgGreen).Fprintln(w, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	colored(w, color.FgYellow).Fprintln(w, fmt.Sprintf(format, args...))
}

func printFailure(w io.Writer, format string, args ...any) {
	colored(w, color.FgRed, color.Bold).Fprintln(w, fmt.Sprintf(format, args...))
}
