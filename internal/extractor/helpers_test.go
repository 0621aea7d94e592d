package extractor

import (
	"bytes"
	"context"
	"debug/elf"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IvanShishkin/buildid/internal/config"
	"go.uber.org/zap"
)

const testBuildID = "abcdef0123456789abcdef0123456789abcdef01"

type handler func(ctx context.Context, args []string) ([]byte, error)

// fakeRunner dispatches on the command name; unknown commands behave like a
// missing executable
type fakeRunner struct {
	mu       sync.Mutex
	handlers map[string]handler
	calls    []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{handlers: make(map[string]handler)}
}

func (f *fakeRunner) on(name string, h handler) *fakeRunner {
	f.handlers[name] = h
	return f
}

func (f *fakeRunner) output(name, out string) *fakeRunner {
	return f.on(name, func(context.Context, []string) ([]byte, error) {
		return []byte(out), nil
	})
}

func (f *fakeRunner) fail(name string) *fakeRunner {
	return f.on(name, func(context.Context, []string) ([]byte, error) {
		return []byte("partial"), errors.New("exit status 1")
	})
}

func (f *fakeRunner) hang(name string) *fakeRunner {
	return f.on(name, func(ctx context.Context, _ []string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if !ok {
		return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return h(ctx, args)
}

func (f *fakeRunner) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testConfig() *config.Config {
	return &config.Config{
		Extensions:     []string{".so", ".dylib", ".dll"},
		ExtractTimeout: time.Second,
		InfoTimeout:    time.Second,
		Tools: config.ToolsConfig{
			File:    "file",
			Readelf: "readelf",
			Objdump: "objdump",
		},
	}
}

func newTestExtractor(t *testing.T, cfg *config.Config, runner Runner) *Extractor {
	t.Helper()
	e, err := New(cfg, zap.NewNop(), WithRunner(runner))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// gnuNote builds a little-endian GNU build-id note for the given descriptor
func gnuNote(desc []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	binary.Write(&buf, binary.LittleEndian, uint32(len(desc)))
	binary.Write(&buf, binary.LittleEndian, uint32(ntGNUBuildID))
	buf.Write(gnuNoteName)
	buf.Write(desc)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// objdumpOutput renders data the way `objdump -s` prints a section, including
// the ASCII column
func objdumpOutput(path string, data []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s:     file format elf64-x86-64\n\n", path)
	fmt.Fprintf(&sb, "Contents of section %s:\n", buildIDSection)

	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var groups strings.Builder
		for g := 0; g < len(row); g += 4 {
			ge := g + 4
			if ge > len(row) {
				ge = len(row)
			}
			groups.WriteString(" " + hex.EncodeToString(row[g:ge]))
		}

		ascii := make([]byte, len(row))
		for i, c := range row {
			if c >= 0x20 && c < 0x7f {
				ascii[i] = c
			} else {
				ascii[i] = '.'
			}
		}

		fmt.Fprintf(&sb, " %04x%-36s  %s\n", 0x238+off, groups.String(), ascii)
	}
	return sb.String()
}

// writeTestELF writes a minimal little-endian ELF64 shared object whose only
// content section is .note.gnu.build-id holding note
func writeTestELF(t *testing.T, path string, note []byte) {
	t.Helper()

	const (
		ehsize    = 64
		shentsize = 64
	)

	shstrtab := []byte("\x00" + buildIDSection + "\x00.shstrtab\x00")
	noteOff := uint64(ehsize)
	strOff := noteOff + uint64(len(note))
	shOff := strOff + uint64(len(shstrtab))
	for shOff%8 != 0 {
		shOff++
	}

	hdr := elf.Header64{
		Type:      uint16(elf.ET_DYN),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    ehsize,
		Shentsize: shentsize,
		Shnum:     3,
		Shstrndx:  2,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	sections := []elf.Section64{
		{},
		{
			Name:      1,
			Type:      uint32(elf.SHT_NOTE),
			Flags:     uint64(elf.SHF_ALLOC),
			Off:       noteOff,
			Size:      uint64(len(note)),
			Addralign: 4,
		},
		{
			Name:      uint32(2 + len(buildIDSection)),
			Type:      uint32(elf.SHT_STRTAB),
			Off:       strOff,
			Size:      uint64(len(shstrtab)),
			Addralign: 1,
		},
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, hdr)
	buf.Write(note)
	buf.Write(shstrtab)
	for uint64(buf.Len()) < shOff {
		buf.WriteByte(0)
	}
	for _, sec := range sections {
		binary.Write(&buf, binary.LittleEndian, sec)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0755); err != nil {
		t.Fatalf("Failed to write ELF: %v", err)
	}
}
