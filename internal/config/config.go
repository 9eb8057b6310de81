package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-menupdf/internal/fileutil"
	"github.com/alnah/go-menupdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName names the per-user config directory.
const AppName = "go-menupdf"

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxTitleLength       = 200
	MaxDateRangeLength   = 60  // "auto:DD/MM/YYYY" or "05/11-11/11"
	MaxHostLength        = 253 // DNS name
	MaxEmailLength       = 254 // RFC 5321
	MaxSubjectLength     = 200
	MaxModeLength        = 10
	MaxPageSizeLength    = 10 // "letter", "a4", "legal"
	MaxOrientationLength = 10 // "portrait", "landscape"
	MaxWorkers           = 8  // one browser per worker
)

// Config holds everything the CLI can read from a YAML file.
// Zero values mean "use the library default".
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Export   ExportConfig   `yaml:"export"`
	Page     PageConfig     `yaml:"page"`
	Raster   RasterConfig   `yaml:"raster"`
	Document DocumentConfig `yaml:"document"`
	Assets   AssetsConfig   `yaml:"assets"`
	Share    ShareConfig    `yaml:"share"`
}

// OutputConfig defines where PDFs are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = working directory
}

// ExportConfig selects the export path and its limits.
type ExportConfig struct {
	Mode    string `yaml:"mode"`    // "native" or "raster"
	Timeout string `yaml:"timeout"` // Go duration, e.g. "45s"
	Workers int    `yaml:"workers"` // 0 = auto
}

// PageConfig defines the printed page.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a4", "letter", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // millimeters
}

// RasterConfig tunes the rasterized path.
type RasterConfig struct {
	Width        int     `yaml:"width"`        // CSS px
	Scale        float64 `yaml:"scale"`        // supersampling factor
	SafetyMargin float64 `yaml:"safetyMargin"` // CSS px
}

// DocumentConfig fills in document fields the input does not carry.
type DocumentConfig struct {
	Title         string `yaml:"title"`
	DateRange     string `yaml:"dateRange"` // "auto" resolves to the current week
	MarkdownNotes bool   `yaml:"markdownNotes"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// ShareConfig defines what happens after a PDF is stored.
type ShareConfig struct {
	Open  bool        `yaml:"open"` // open with the system viewer
	Email EmailConfig `yaml:"email"`
}

// EmailConfig defines SMTP delivery.
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Subject  string `yaml:"subject"`
}

// TimeoutDuration parses Export.Timeout. An empty value returns 0.
func (e ExportConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: export.timeout %q: %v", ErrInvalidValue, e.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: export.timeout must be positive, got %s", ErrInvalidValue, e.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and ranges. Page and raster values are
// checked again by the library; here they only need to be plausible.
// Called by LoadConfig, and available to callers building a Config by hand.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"export.mode", c.Export.Mode, MaxModeLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.dateRange", c.Document.DateRange, MaxDateRangeLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"share.email.host", c.Share.Email.Host, MaxHostLength},
		{"share.email.from", c.Share.Email.From, MaxEmailLength},
		{"share.email.to", c.Share.Email.To, MaxEmailLength},
		{"share.email.subject", c.Share.Email.Subject, MaxSubjectLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Export.Mode != "" {
		switch strings.ToLower(c.Export.Mode) {
		case "native", "raster":
		default:
			return fmt.Errorf("%w: export.mode %q (must be native or raster)", ErrInvalidValue, c.Export.Mode)
		}
	}
	if _, err := c.Export.TimeoutDuration(); err != nil {
		return err
	}
	if c.Export.Workers < 0 || c.Export.Workers > MaxWorkers {
		return fmt.Errorf("%w: export.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Export.Workers)
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin cannot be negative", ErrInvalidValue)
	}
	if c.Raster.Width < 0 || c.Raster.Scale < 0 || c.Raster.SafetyMargin < 0 {
		return fmt.Errorf("%w: raster values cannot be negative", ErrInvalidValue)
	}

	if c.Share.Email.Enabled {
		e := c.Share.Email
		if e.Host == "" || e.From == "" || e.To == "" {
			return fmt.Errorf("%w: share.email requires host, from and to when enabled", ErrInvalidValue)
		}
		if e.Port < 0 || e.Port > 65535 {
			return fmt.Errorf("%w: share.email.port %d out of range", ErrInvalidValue, e.Port)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration: every value falls back to
// the library default and no sharing is enabled.
func DefaultConfig() *Config {
	return &Config{}
}

// Template returns a config with the library defaults filled in, used to
// write a starter file.
func Template() *Config {
	return &Config{
		Export:   ExportConfig{Mode: "native", Timeout: "30s"},
		Page:     PageConfig{Size: "a4", Orientation: "portrait", Margin: 20},
		Raster:   RasterConfig{Width: 794, Scale: 2, SafetyMargin: 12},
		Document: DocumentConfig{DateRange: "auto"},
		Share:    ShareConfig{Email: EmailConfig{Port: 587}},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFileStrict(configPath, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// ./name.yaml, ./name.yml, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing search path for name.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
