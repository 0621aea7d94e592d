package extractor

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// NT_GNU_BUILD_ID note type
const ntGNUBuildID = 3

// Legacy dump heuristic: a 16-byte header followed by a SHA-1 descriptor
const (
	noteHeaderHexLen = 32
	sha1HexLen       = 40
	minBuildIDHexLen = 32
)

var gnuNoteName = []byte("GNU\x00")

// BuildIDFromHex decodes a hex dump of a .note.gnu.build-id section and
// returns the descriptor as lowercase hex. When the dump does not decode as
// a GNU build-id note, the fixed-offset heuristic is applied instead.
func BuildIDFromHex(dump string) (string, bool) {
	if len(dump)%2 == 0 {
		if data, err := hex.DecodeString(dump); err == nil {
			if desc, ok := DecodeBuildIDNote(data); ok {
				return hex.EncodeToString(desc), true
			}
		}
	}
	return buildIDFromOffset(dump)
}

// DecodeBuildIDNote walks the ELF notes in data and returns the descriptor of
// the first GNU build-id note. Both byte orders are tried, little-endian first.
func DecodeBuildIDNote(data []byte) ([]byte, bool) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if desc, ok := decodeNotes(data, order); ok {
			return desc, true
		}
	}
	return nil, false
}

func decodeNotes(data []byte, order binary.ByteOrder) ([]byte, bool) {
	for len(data) >= 12 {
		namesz := uint64(order.Uint32(data[0:4]))
		descsz := uint64(order.Uint32(data[4:8]))
		noteType := order.Uint32(data[8:12])

		nameEnd := 12 + namesz
		descStart := 12 + align4(namesz)
		descEnd := descStart + descsz
		if nameEnd > uint64(len(data)) || descEnd > uint64(len(data)) {
			return nil, false
		}

		if noteType == ntGNUBuildID && descsz > 0 && bytes.Equal(data[12:nameEnd], gnuNoteName) {
			return data[descStart:descEnd], true
		}

		next := descStart + align4(descsz)
		if next > uint64(len(data)) {
			return nil, false
		}
		data = data[next:]
	}
	return nil, false
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// buildIDFromOffset assumes the first 16 bytes are the note header and takes
// the following 40 hex characters, or whatever remains if at least 32
func buildIDFromOffset(dump string) (string, bool) {
	if len(dump) <= noteHeaderHexLen {
		return "", false
	}

	id := dump[noteHeaderHexLen:]
	if len(id) >= sha1HexLen {
		return id[:sha1HexLen], true
	}
	if len(id) >= minBuildIDHexLen {
		return id, true
	}
	return "", false
}
