package extractor

import (
	"context"
	"regexp"
	"time"
)

// Backend priorities, higher runs first
const (
	priorityFile    = 100
	priorityReadelf = 90
	priorityObjdump = 80
	priorityNative  = 70
)

var fileBuildIDRe = regexp.MustCompile(`BuildID\[sha1\]=([a-f0-9]+)`)

// FileBackend reads the Build ID from the output of file(1)
type FileBackend struct {
	*BaseBackend
	runner  Runner
	timeout time.Duration
}

// NewFileBackend creates a backend that runs the given file command
func NewFileBackend(command string, runner Runner, timeout time.Duration) *FileBackend {
	return &FileBackend{
		BaseBackend: NewBaseBackend("file", priorityFile, command),
		runner:      runner,
		timeout:     timeout,
	}
}

// Extract runs `file <path>` and looks for BuildID[sha1]=<hex>
func (b *FileBackend) Extract(ctx context.Context, path string) Outcome {
	out, err := runTool(ctx, b.runner, b.timeout, b.Command(), path)
	if err != nil {
		return Abstain("%v", err)
	}

	if id := parseFileOutput(out); id != "" {
		return Found(id)
	}
	return Abstain("no BuildID[sha1] in file output")
}

// parseFileOutput returns the hex capture of the first BuildID[sha1]= match
func parseFileOutput(out string) string {
	match := fileBuildIDRe.FindStringSubmatch(out)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
