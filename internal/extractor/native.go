package extractor

import (
	"context"
	"debug/elf"
	"encoding/binary"
	"encoding/hex"
)

// NativeBackend reads the build-id note directly with debug/elf, without
// spawning a process
type NativeBackend struct {
	*BaseBackend
}

// NewNativeBackend creates the in-process backend
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{
		BaseBackend: NewBaseBackend("native", priorityNative, ""),
	}
}

// Extract opens path as ELF and decodes its build-id note. The named section
// is preferred; any other SHT_NOTE section is tried afterwards.
func (b *NativeBackend) Extract(ctx context.Context, path string) Outcome {
	if err := ctx.Err(); err != nil {
		return Abstain("%v", err)
	}

	f, err := elf.Open(path)
	if err != nil {
		return Abstain("%v", err)
	}
	defer f.Close()

	if sec := f.Section(buildIDSection); sec != nil {
		if id, ok := noteSectionBuildID(sec, f.ByteOrder); ok {
			return Found(id)
		}
	}

	for _, sec := range f.Sections {
		if sec.Type != elf.SHT_NOTE || sec.Name == buildIDSection {
			continue
		}
		if id, ok := noteSectionBuildID(sec, f.ByteOrder); ok {
			return Found(id)
		}
	}

	return Abstain("no GNU build-id note")
}

func noteSectionBuildID(sec *elf.Section, order binary.ByteOrder) (string, bool) {
	data, err := sec.Data()
	if err != nil {
		return "", false
	}
	desc, ok := decodeNotes(data, order)
	if !ok {
		return "", false
	}
	return hex.EncodeToString(desc), true
}
