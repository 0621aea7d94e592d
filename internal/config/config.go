package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the extractor configuration
type Config struct {
	// Scan settings
	Recursive  bool     `mapstructure:"recursive"`  // descend into subdirectories
	Extensions []string `mapstructure:"extensions"` // library-like extensions, with leading dot
	Exclude    []string `mapstructure:"exclude"`    // directory names skipped while walking

	// Report settings
	Format     string `mapstructure:"format"`      // simple, detailed, json
	OutputFile string `mapstructure:"output_file"` // write report here instead of stdout
	Quiet      bool   `mapstructure:"quiet"`       // suppress diagnostics

	// Logging settings
	Verbose bool   `mapstructure:"verbose"`  // development logger at debug level
	LogFile string `mapstructure:"log_file"` // rotated log file, empty disables

	// Backend settings
	Tools          ToolsConfig   `mapstructure:"tools"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"` // per-backend subprocess timeout
	InfoTimeout    time.Duration `mapstructure:"info_timeout"`    // file identification timeout for info
	Native         bool          `mapstructure:"native"`          // enable the in-process ELF note reader

	// Classification rules file, empty uses the built-in rules
	RulesPath string `mapstructure:"rules_path"`
}

// ToolsConfig holds the external commands used by backends
type ToolsConfig struct {
	File    string `mapstructure:"file_cmd"`
	Readelf string `mapstructure:"readelf_cmd"`
	Objdump string `mapstructure:"objdump_cmd"`
}

// Output formats
const (
	FormatSimple   = "simple"
	FormatDetailed = "detailed"
	FormatJSON     = "json"
)

// ValidFormats lists the accepted report formats
var ValidFormats = []string{FormatSimple, FormatDetailed, FormatJSON}

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables prefixed with BUILDID_
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("recursive", false)
	v.SetDefault("extensions", []string{".so", ".dylib", ".dll"})
	v.SetDefault("exclude", []string{})
	v.SetDefault("format", FormatSimple)
	v.SetDefault("output_file", "")
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")
	v.SetDefault("extract_timeout", 10*time.Second)
	v.SetDefault("info_timeout", 5*time.Second)
	v.SetDefault("native", false)
	v.SetDefault("rules_path", "")

	// Tool defaults
	v.SetDefault("tools.file_cmd", "file")
	v.SetDefault("tools.readelf_cmd", "readelf")
	v.SetDefault("tools.objdump_cmd", "objdump")

	// Read config file if given
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	// Read environment variables, BUILDID_TOOLS_FILE_CMD etc.
	v.SetEnvPrefix("BUILDID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases for the tool commands
	_ = v.BindEnv("tools.file_cmd", "BUILDID_TOOLS_FILE_CMD", "BUILDID_FILE_CMD")
	_ = v.BindEnv("tools.readelf_cmd", "BUILDID_TOOLS_READELF_CMD", "BUILDID_READELF_CMD")
	_ = v.BindEnv("tools.objdump_cmd", "BUILDID_TOOLS_OBJDUMP_CMD", "BUILDID_OBJDUMP_CMD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that cannot be expressed as defaults
func (c *Config) Validate() error {
	if !IsValidFormat(c.Format) {
		return fmt.Errorf("--format must be one of: %s (got: %s)", strings.Join(ValidFormats, ", "), c.Format)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("extract timeout must be positive (got: %s)", c.ExtractTimeout)
	}
	if c.InfoTimeout <= 0 {
		return fmt.Errorf("info timeout must be positive (got: %s)", c.InfoTimeout)
	}
	return nil
}

// NeedsFileInfo reports whether the selected format renders FileInfo
func (c *Config) NeedsFileInfo() bool {
	return c.Format != FormatSimple
}

// IsValidFormat checks if format is a known report format
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// HasLibraryExtension reports whether name ends with one of the configured
// extensions or carries one as an embedded segment, as in libfoo.so.1.2
func (c *Config) HasLibraryExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range c.Extensions {
		ext = strings.ToLower(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) || strings.Contains(lower, ext+".") {
			return true
		}
	}
	return false
}
