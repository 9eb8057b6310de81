package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	menupdf "github.com/alnah/go-menupdf"
	"github.com/alnah/go-menupdf/internal/config"
	"github.com/alnah/go-menupdf/internal/dateutil"
	"github.com/alnah/go-menupdf/internal/fileutil"
	"github.com/alnah/go-menupdf/internal/hints"
	"github.com/alnah/go-menupdf/internal/yamlutil"
)

// Sentinel errors for export runs.
var (
	ErrWriteHTML    = errors.New("failed to write HTML file")
	ErrConfigExists = errors.New("config file already exists")
)

// File permission constants.
const (
	dirPermissions    = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions   = 0o644 // rw-r--r--: owner read+write, others read
	configPermissions = 0o600 // may hold SMTP credentials
)

// defaultConfigFile is where --init-config writes without an argument.
const defaultConfigFile = "menupdf.yaml"

// exportParams groups values shared by every file of a batch.
type exportParams struct {
	opts      []menupdf.Option
	outputDir string
	title     string // used when an input has no title
	dateRange string // resolved; used when an input has no range
	now       time.Time
	html      bool
	htmlOnly  bool
}

// runExport orchestrates a batch export.
func runExport(ctx context.Context, flags *exportFlags, positionalArgs []string, env *Environment, newPool poolFactory) error {
	if flags.initConfig {
		return writeConfigTemplate(positionalArgs, env)
	}

	// Validate worker count early
	if err := validateWorkers(flags.export.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	if env.Environ != nil {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			name := cmp.Or(flags.common.config, envCfg.ConfigPath)
			return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return fmt.Errorf("loading config: %w", err)
	}

	// Precedence: flags > env > file
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := buildExportParams(cfg, flags, env.Now())
	if err != nil {
		return err
	}

	files, err := discoverInputs(positionalArgs)
	if err != nil {
		return fmt.Errorf("discovering inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no .json or .txt files in %s", ErrNoInput, strings.Join(positionalArgs, ", "))
	}

	if params.outputDir != "" {
		if err := os.MkdirAll(params.outputDir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	setMaxProcs(flags.common.verbose, env)

	poolSize := min(menupdf.ResolvePoolSize(cfg.Export.Workers), len(files))
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := newPool(poolSize, params.opts...)
	defer pool.Close()

	results := exportBatch(ctx, pool, files, params, env.Stdin)

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return &batchError{failed: failedCount, first: firstError(results)}
	}
	return nil
}

// batchError reports failed exports. It unwraps to the first failure so
// the exit code reflects its cause.
type batchError struct {
	failed int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d export(s) failed", e.failed)
}

func (e *batchError) Unwrap() error {
	return e.first
}

// loadConfig reads the config named by the flag, then MENUPDF_CONFIG.
// Without either, every value falls back to the library default.
func loadConfig(name string, envCfg *envConfig) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *exportFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.assetPath != "" {
		cfg.Assets.BasePath = flags.assetPath
	}

	// Export flags
	if flags.export.mode != "" {
		cfg.Export.Mode = flags.export.mode
	}
	if flags.export.timeout != "" {
		cfg.Export.Timeout = flags.export.timeout
	}
	if flags.export.workers > 0 {
		cfg.Export.Workers = flags.export.workers
	}

	// Document flags
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.dateRange != "" {
		cfg.Document.DateRange = flags.document.dateRange
	}
	if flags.document.markdownNotes {
		cfg.Document.MarkdownNotes = true
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Raster flags
	if flags.raster.width > 0 {
		cfg.Raster.Width = flags.raster.width
	}
	if flags.raster.scale > 0 {
		cfg.Raster.Scale = flags.raster.scale
	}
	if flags.raster.safetyMargin > 0 {
		cfg.Raster.SafetyMargin = flags.raster.safetyMargin
	}

	// Share flags
	if flags.share.open {
		cfg.Share.Open = true
	}
	if flags.share.emailTo != "" {
		cfg.Share.Email.To = flags.share.emailTo
		cfg.Share.Email.Enabled = true
	}
}

// buildExportParams turns a merged config into exporter options.
func buildExportParams(cfg *config.Config, flags *exportFlags, now time.Time) (*exportParams, error) {
	dateRange, err := dateutil.ResolveRange(cfg.Document.DateRange, now)
	if err != nil {
		return nil, fmt.Errorf("document.dateRange: %w", err)
	}

	timeout, err := cfg.Export.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []menupdf.Option{
		menupdf.WithOutputDir(cfg.Output.DefaultDir),
		menupdf.WithPage(buildPageSettings(cfg)),
		menupdf.WithRaster(buildRasterSettings(cfg)),
		menupdf.WithMarkdownNotes(cfg.Document.MarkdownNotes),
	}
	if cfg.Export.Mode != "" {
		mode, err := menupdf.ParseMode(cfg.Export.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, menupdf.WithMode(mode))
	}
	if timeout > 0 {
		opts = append(opts, menupdf.WithTimeout(timeout))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, menupdf.WithAssetPath(cfg.Assets.BasePath))
	}
	if sharer := buildSharer(cfg); sharer != nil {
		opts = append(opts, menupdf.WithSharer(sharer))
	}

	return &exportParams{
		opts:      opts,
		outputDir: cfg.Output.DefaultDir,
		title:     cfg.Document.Title,
		dateRange: dateRange,
		now:       now,
		html:      flags.outputMode.html,
		htmlOnly:  flags.outputMode.htmlOnly,
	}, nil
}

// buildPageSettings starts from the library defaults and applies set fields.
func buildPageSettings(cfg *config.Config) menupdf.PageSettings {
	page := menupdf.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = cfg.Page.Size
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = cfg.Page.Orientation
	}
	if cfg.Page.Margin > 0 {
		page.Margin = cfg.Page.Margin
	}
	return page
}

// buildRasterSettings starts from the library defaults and applies set fields.
func buildRasterSettings(cfg *config.Config) menupdf.RasterSettings {
	raster := menupdf.DefaultRasterSettings()
	if cfg.Raster.Width > 0 {
		raster.Width = cfg.Raster.Width
	}
	if cfg.Raster.Scale > 0 {
		raster.Scale = cfg.Raster.Scale
	}
	if cfg.Raster.SafetyMargin > 0 {
		raster.SafetyMargin = cfg.Raster.SafetyMargin
	}
	return raster
}

// buildSharer returns nil when no sharing is configured.
func buildSharer(cfg *config.Config) menupdf.Sharer {
	var sharers menupdf.MultiSharer
	if cfg.Share.Open {
		sharers = append(sharers, menupdf.NewOpenSharer())
	}
	if e := cfg.Share.Email; e.Enabled {
		sharers = append(sharers, menupdf.NewMailSharer(menupdf.MailSettings{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
			From:     e.From,
			To:       e.To,
			Subject:  e.Subject,
		}))
	}

	switch len(sharers) {
	case 0:
		return nil
	case 1:
		return sharers[0]
	default:
		return sharers
	}
}

// writeConfigTemplate writes a starter config and refuses to overwrite.
func writeConfigTemplate(args []string, env *Environment) error {
	path := defaultConfigFile
	if len(args) > 0 {
		path = args[0]
	}
	if fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := yamlutil.Marshal(config.Template())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, configPermissions); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Created %s\n", path)
	return nil
}

// setMaxProcs configures GOMAXPROCS for the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(verbose bool, env *Environment) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
}
