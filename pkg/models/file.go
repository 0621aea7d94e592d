package models

// Architecture is the Android ABI name of a binary's target CPU
type Architecture string

const (
	ArchUnknown Architecture = "unknown"
	ArchARM64   Architecture = "arm64-v8a"
	ArchARMv7   Architecture = "armeabi-v7a"
	ArchX86     Architecture = "x86"
	ArchX86_64  Architecture = "x86_64"
)

// FileType is the ELF object kind
type FileType string

const (
	TypeUnknown       FileType = "unknown"
	TypeSharedLibrary FileType = "shared_library"
	TypeExecutable    FileType = "executable"
	TypeObjectFile    FileType = "object_file"
)

// FileInfo describes a binary as reported by the file identification tool.
// FileSize is serialized as a decimal string to keep the report schema stable.
type FileInfo struct {
	Architecture Architecture `json:"architecture"`
	FileType     FileType     `json:"file_type"`
	FileSize     int64        `json:"file_size,string"`
	HasDebugInfo bool         `json:"has_debug_info"`
	IsStripped   bool         `json:"is_stripped"`
}

// NewFileInfo returns a FileInfo populated with pessimistic defaults
func NewFileInfo() FileInfo {
	return FileInfo{
		Architecture: ArchUnknown,
		FileType:     TypeUnknown,
		IsStripped:   true,
	}
}

// IsValidArchitecture checks if a is one of the known architectures
func IsValidArchitecture(a Architecture) bool {
	switch a {
	case ArchUnknown, ArchARM64, ArchARMv7, ArchX86, ArchX86_64:
		return true
	}
	return false
}

// IsValidFileType checks if t is one of the known file types
func IsValidFileType(t FileType) bool {
	switch t {
	case TypeUnknown, TypeSharedLibrary, TypeExecutable, TypeObjectFile:
		return true
	}
	return false
}
