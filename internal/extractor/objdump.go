package extractor

import (
	"context"
	"regexp"
	"strings"
	"time"
)

const buildIDSection = ".note.gnu.build-id"

// objdump -s prints at most 4 groups of 4 bytes per line, each preceded by a
// space, before the ASCII column
const (
	maxGroupsPerLine = 4
	groupColumnWidth = maxGroupsPerLine * 9
)

var (
	dumpLineRe = regexp.MustCompile(`^ [0-9a-f]+`)
	hexGroupRe = regexp.MustCompile(`^[0-9a-f]+$`)
)

// ObjdumpBackend hex-dumps the build-id section with `objdump -s`
type ObjdumpBackend struct {
	*BaseBackend
	runner  Runner
	timeout time.Duration
}

// NewObjdumpBackend creates a backend that runs the given objdump command
func NewObjdumpBackend(command string, runner Runner, timeout time.Duration) *ObjdumpBackend {
	return &ObjdumpBackend{
		BaseBackend: NewBaseBackend("objdump", priorityObjdump, command),
		runner:      runner,
		timeout:     timeout,
	}
}

// Extract runs `objdump -s -j .note.gnu.build-id <path>` and decodes the
// dumped note
func (b *ObjdumpBackend) Extract(ctx context.Context, path string) Outcome {
	out, err := runTool(ctx, b.runner, b.timeout, b.Command(), "-s", "-j", buildIDSection, path)
	if err != nil {
		return Abstain("%v", err)
	}

	dump := parseSectionDump(out)
	if dump == "" {
		return Abstain("no section data in dump")
	}

	if id, ok := BuildIDFromHex(dump); ok {
		return Found(id)
	}
	return Abstain("section data too short (%d hex chars)", len(dump))
}

// parseSectionDump concatenates the hex groups of every data line. Reading
// stops at the first token that is not hex or at the ASCII column.
func parseSectionDump(out string) string {
	var sb strings.Builder

	for _, line := range strings.Split(out, "\n") {
		loc := dumpLineRe.FindStringIndex(line)
		if loc == nil {
			continue
		}

		groups := line[loc[1]:]
		if len(groups) > groupColumnWidth {
			groups = groups[:groupColumnWidth]
		}

		fields := strings.Fields(groups)
		if len(fields) > maxGroupsPerLine {
			fields = fields[:maxGroupsPerLine]
		}
		for _, group := range fields {
			if !hexGroupRe.MatchString(group) {
				break
			}
			sb.WriteString(group)
		}
	}

	return sb.String()
}
