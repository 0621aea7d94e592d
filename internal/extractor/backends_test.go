package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "SHA1 build id",
			output: "/lib/libfoo.so: ELF 64-bit LSB shared object, ARM aarch64, version 1 (SYSV), dynamically linked, BuildID[sha1]=" + testBuildID + ", stripped",
			want:   testBuildID,
		},
		{
			name:   "First match wins",
			output: "BuildID[sha1]=aaaa, BuildID[sha1]=bbbb",
			want:   "aaaa",
		},
		{
			name:   "Other hash kinds are ignored",
			output: "ELF 64-bit LSB shared object, BuildID[md5/uuid]=0123456789abcdef, stripped",
			want:   "",
		},
		{
			name:   "Uppercase hex is not captured",
			output: "BuildID[sha1]=ABCDEF",
			want:   "",
		},
		{
			name:   "No build id",
			output: "ASCII text",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFileOutput(tt.output))
		})
	}
}

func TestParseReadelfNotes(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "Standard note",
			output: "\nDisplaying notes found in: .note.gnu.build-id\n" +
				"  Owner                Data size \tDescription\n" +
				"  GNU                  0x00000014\tNT_GNU_BUILD_ID (unique build ID bitstring)\n" +
				"    Build ID: " + testBuildID + "\n",
			want: testBuildID,
		},
		{
			name:   "Whitespace inside the value is removed",
			output: "    Build ID: abcdef01 23456789\tabcdef01 23456789 abcdef01\n",
			want:   testBuildID,
		},
		{
			name:   "Second marker on the same line is cut",
			output: "Build ID: abcd Build ID: ffff\n",
			want:   "abcd",
		},
		{
			name:   "Non-hex value falls through to the next line",
			output: "    Build ID: not-a-hash\n    Build ID: 0123abcd\n",
			want:   "0123abcd",
		},
		{
			name:   "Uppercase value is rejected",
			output: "    Build ID: ABCDEF\n",
			want:   "",
		},
		{
			name:   "Empty value",
			output: "    Build ID:   \n",
			want:   "",
		},
		{
			name:   "No marker",
			output: "Displaying notes found in: .note.ABI-tag\n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseReadelfNotes(tt.output))
		})
	}
}

func TestParseSectionDump(t *testing.T) {
	note := gnuNote(mustHex(t, testBuildID))
	out := objdumpOutput("/tmp/libfoo.so", note)

	dump := parseSectionDump(out)
	assert.Equal(t, "040000001400000003000000474e5500"+testBuildID, dump)
}

func TestParseSectionDump_IgnoresASCIIColumn(t *testing.T) {
	// the ASCII column of the last row reads "abcd", which must not be
	// mistaken for another hex group
	out := fmt.Sprintf(" 0000%-36s  abcd\n", " 00000000")
	assert.Equal(t, "00000000", parseSectionDump(out))
}

func TestParseSectionDump_NoSection(t *testing.T) {
	out := "\n/tmp/libfoo.so:     file format elf64-x86-64\n\n"
	assert.Empty(t, parseSectionDump(out))
}

func TestFileBackend_Extract(t *testing.T) {
	runner := newFakeRunner().on("file", func(_ context.Context, args []string) ([]byte, error) {
		require.Len(t, args, 1)
		return []byte(args[0] + ": ELF 64-bit LSB shared object, BuildID[sha1]=" + testBuildID + ", stripped"), nil
	})
	b := NewFileBackend("file", runner, time.Second)

	outcome := b.Extract(context.Background(), "/tmp/libfoo.so")
	assert.True(t, outcome.OK())
	assert.Equal(t, testBuildID, outcome.BuildID)
}

func TestFileBackend_ToolFailure(t *testing.T) {
	b := NewFileBackend("file", newFakeRunner().fail("file"), time.Second)

	outcome := b.Extract(context.Background(), "/tmp/libfoo.so")
	assert.False(t, outcome.OK())
	assert.NotEmpty(t, outcome.Reason)
}

func TestFileBackend_MissingTool(t *testing.T) {
	b := NewFileBackend("file", newFakeRunner(), time.Second)

	outcome := b.Extract(context.Background(), "/tmp/libfoo.so")
	assert.False(t, outcome.OK())
}

func TestReadelfBackend_Extract(t *testing.T) {
	runner := newFakeRunner().on("readelf", func(_ context.Context, args []string) ([]byte, error) {
		assert.Equal(t, []string{"-n", "/tmp/libfoo.so"}, args)
		return []byte("    Build ID: " + testBuildID + "\n"), nil
	})
	b := NewReadelfBackend("readelf", runner, time.Second)

	outcome := b.Extract(context.Background(), "/tmp/libfoo.so")
	assert.Equal(t, testBuildID, outcome.BuildID)
}

func TestObjdumpBackend_Extract(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "SHA1 note",
			data: gnuNote(mustHex(t, testBuildID)),
			want: testBuildID,
		},
		{
			name: "Short note decoded by header",
			data: gnuNote(mustHex(t, "0123456789abcdef")),
			want: "0123456789abcdef",
		},
		{
			name: "Unparseable header falls back to offset",
			data: append(make([]byte, 16), mustHex(t, testBuildID)...),
			want: testBuildID,
		},
		{
			name: "Too short",
			data: make([]byte, 16),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner().on("objdump", func(_ context.Context, args []string) ([]byte, error) {
				assert.Equal(t, []string{"-s", "-j", buildIDSection, "/tmp/libfoo.so"}, args)
				return []byte(objdumpOutput("/tmp/libfoo.so", tt.data)), nil
			})
			b := NewObjdumpBackend("objdump", runner, time.Second)

			outcome := b.Extract(context.Background(), "/tmp/libfoo.so")
			assert.Equal(t, tt.want, outcome.BuildID)
		})
	}
}

func TestBackend_Timeout(t *testing.T) {
	b := NewReadelfBackend("readelf", newFakeRunner().hang("readelf"), 20*time.Millisecond)

	start := time.Now()
	outcome := b.Extract(context.Background(), "/tmp/libfoo.so")

	assert.False(t, outcome.OK())
	assert.Contains(t, outcome.Reason, context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunTool_EmptyCommand(t *testing.T) {
	_, err := runTool(context.Background(), newFakeRunner(), time.Second, "")
	assert.Error(t, err)
}

func TestRunTool_WrapsError(t *testing.T) {
	runner := newFakeRunner().on("tool", func(context.Context, []string) ([]byte, error) {
		return nil, errors.New("boom")
	})

	_, err := runTool(context.Background(), runner, time.Second, "tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool")
	assert.Contains(t, err.Error(), "boom")
}

func TestNativeBackend_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libnative.so")
	writeTestELF(t, path, gnuNote(mustHex(t, testBuildID)))

	outcome := NewNativeBackend().Extract(context.Background(), path)
	assert.True(t, outcome.OK(), outcome.Reason)
	assert.Equal(t, testBuildID, outcome.BuildID)
}

func TestNativeBackend_NotELF(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "libfake.so", []byte("not an elf file"))

	outcome := NewNativeBackend().Extract(context.Background(), path)
	assert.False(t, outcome.OK())
}

func TestNativeBackend_NoNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libempty.so")
	writeTestELF(t, path, nil)

	outcome := NewNativeBackend().Extract(context.Background(), path)
	assert.False(t, outcome.OK())
}

func TestNativeBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := NewNativeBackend().Extract(ctx, "/tmp/libfoo.so")
	assert.False(t, outcome.OK())
}
