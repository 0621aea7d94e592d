package extractor

import (
	"github.com/h2non/filetype"

	"github.com/IvanShishkin/buildid/internal/filesystem"
)

// sniffBytes is the header size filetype needs for its matchers
const sniffBytes = 261

// Sniff returns a best-effort format label for the file at path, such as
// "elf" or "exe", or "unknown" when nothing matches
func Sniff(path string) string {
	buf, err := filesystem.ReadHeader(path, sniffBytes)
	if err != nil || len(buf) == 0 {
		return "unknown"
	}

	kind, err := filetype.Match(buf)
	if err != nil || kind == filetype.Unknown {
		return "unknown"
	}
	return kind.Extension
}
