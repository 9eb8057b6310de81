package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-menupdf/internal/config"
)

// envPrefix marks the variables this CLI reads.
const envPrefix = "MENUPDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MENUPDF_CONFIG: config file name or path
	Mode       string        // MENUPDF_MODE: native, raster
	Timeout    time.Duration // MENUPDF_TIMEOUT: per-export timeout
	Workers    int           // MENUPDF_WORKERS: parallel workers
	OutputDir  string        // MENUPDF_OUTPUT_DIR: default output directory
	PageSize   string        // MENUPDF_PAGE_SIZE: a4, letter, legal
	Title      string        // MENUPDF_TITLE: fallback title
	DateRange  string        // MENUPDF_DATE_RANGE: fallback date range
	AssetPath  string        // MENUPDF_ASSET_PATH: asset override directory
	SMTPPass   string        // MENUPDF_SMTP_PASSWORD: keeps the password out of YAML
}

// knownEnvVars lists valid MENUPDF_* environment variables.
var knownEnvVars = map[string]bool{
	"MENUPDF_CONFIG":        true,
	"MENUPDF_MODE":          true,
	"MENUPDF_TIMEOUT":       true,
	"MENUPDF_WORKERS":       true,
	"MENUPDF_OUTPUT_DIR":    true,
	"MENUPDF_PAGE_SIZE":     true,
	"MENUPDF_TITLE":         true,
	"MENUPDF_DATE_RANGE":    true,
	"MENUPDF_ASSET_PATH":    true,
	"MENUPDF_SMTP_PASSWORD": true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid durations and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MENUPDF_CONFIG"),
		Mode:       getenv("MENUPDF_MODE"),
		OutputDir:  getenv("MENUPDF_OUTPUT_DIR"),
		PageSize:   getenv("MENUPDF_PAGE_SIZE"),
		Title:      getenv("MENUPDF_TITLE"),
		DateRange:  getenv("MENUPDF_DATE_RANGE"),
		AssetPath:  getenv("MENUPDF_ASSET_PATH"),
		SMTPPass:   getenv("MENUPDF_SMTP_PASSWORD"),
	}

	if timeout := getenv("MENUPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MENUPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports MENUPDF_* variables that are not recognized.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills empty config values from the environment.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Mode != "" && cfg.Export.Mode == "" {
		cfg.Export.Mode = env.Mode
	}
	if env.Timeout > 0 && cfg.Export.Timeout == "" {
		cfg.Export.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 && cfg.Export.Workers == 0 {
		cfg.Export.Workers = env.Workers
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PageSize != "" && cfg.Page.Size == "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Title != "" && cfg.Document.Title == "" {
		cfg.Document.Title = env.Title
	}
	if env.DateRange != "" && cfg.Document.DateRange == "" {
		cfg.Document.DateRange = env.DateRange
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.SMTPPass != "" && cfg.Share.Email.Password == "" {
		cfg.Share.Email.Password = env.SMTPPass
	}
}
