package extractor

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const buildIDMarker = "Build ID:"

var lowerHexRe = regexp.MustCompile(`^[a-f0-9]+$`)

// ReadelfBackend reads the Build ID from `readelf -n`
type ReadelfBackend struct {
	*BaseBackend
	runner  Runner
	timeout time.Duration
}

// NewReadelfBackend creates a backend that runs the given readelf command
func NewReadelfBackend(command string, runner Runner, timeout time.Duration) *ReadelfBackend {
	return &ReadelfBackend{
		BaseBackend: NewBaseBackend("readelf", priorityReadelf, command),
		runner:      runner,
		timeout:     timeout,
	}
}

// Extract runs `readelf -n <path>` and parses the "Build ID:" line
func (b *ReadelfBackend) Extract(ctx context.Context, path string) Outcome {
	out, err := runTool(ctx, b.runner, b.timeout, b.Command(), "-n", path)
	if err != nil {
		return Abstain("%v", err)
	}

	if id := parseReadelfNotes(out); id != "" {
		return Found(id)
	}
	return Abstain("no valid Build ID line in notes")
}

// parseReadelfNotes returns the first "Build ID:" value that is lowercase hex
// once all whitespace is removed
func parseReadelfNotes(out string) string {
	for _, line := range strings.Split(out, "\n") {
		idx := strings.Index(line, buildIDMarker)
		if idx < 0 {
			continue
		}

		value := line[idx+len(buildIDMarker):]
		if next := strings.Index(value, buildIDMarker); next >= 0 {
			value = value[:next]
		}

		id := stripSpace(value)
		if id != "" && lowerHexRe.MatchString(id) {
			return id
		}
	}
	return ""
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
