package menupdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-menupdf/internal/imgpdf"
	"github.com/alnah/go-menupdf/internal/pagebreak"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in millimeters.
const (
	MinMargin     = 10.0
	MaxMargin     = 40.0
	DefaultMargin = 20.0
)

// PageSettings configures the printed page.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // millimeters, applied to all sides
}

// DefaultPageSettings returns A4 portrait with 20mm margins.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Does not mutate; comparisons are case-insensitive.
func (p PageSettings) Validate() error {
	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.1f (must be between %.0f and %.0f mm)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// format returns the page format in points, oriented.
func (p PageSettings) format() imgpdf.Format {
	f, err := imgpdf.LookupFormat(p.Size)
	if err != nil {
		f = imgpdf.A4
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		f = f.Landscape()
	}
	return f
}

func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeA4, PageSizeLetter, PageSizeLegal:
		return true
	}
	return false
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Mode selects the export path.
type Mode string

// Export modes.
const (
	// ModeNative prints through the browser's print engine.
	ModeNative Mode = "native"
	// ModeRaster renders to an image and assembles one page per slice.
	ModeRaster Mode = "raster"
)

// ParseMode converts a case-insensitive name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeNative, ModeRaster:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (must be native or raster)", ErrInvalidMode, s)
}

// Raster defaults.
const (
	DefaultRasterWidth  = 794
	DefaultRasterScale  = 2.0
	DefaultSafetyMargin = pagebreak.DefaultSafetyMargin
)

// RasterSettings configures the rasterized path.
type RasterSettings struct {
	Width        int     // container width in CSS px
	Scale        float64 // supersampling factor
	SafetyMargin float64 // CSS px kept free at the bottom of a page before a card is pushed
}

// DefaultRasterSettings returns 794px at 2x with a 12px safety margin.
func DefaultRasterSettings() RasterSettings {
	return RasterSettings{
		Width:        DefaultRasterWidth,
		Scale:        DefaultRasterScale,
		SafetyMargin: DefaultSafetyMargin,
	}
}

// Validate checks raster bounds.
func (r RasterSettings) Validate() error {
	if r.Width < 320 || r.Width > 4096 {
		return fmt.Errorf("%w: width %d (must be between 320 and 4096)", ErrInvalidRaster, r.Width)
	}
	if r.Scale < 1 || r.Scale > 4 {
		return fmt.Errorf("%w: scale %.2f (must be between 1 and 4)", ErrInvalidRaster, r.Scale)
	}
	if r.SafetyMargin < 0 {
		return fmt.Errorf("%w: negative safety margin", ErrInvalidRaster)
	}
	return nil
}

// MenuDocument is the export input.
type MenuDocument struct {
	Title     string // blank uses DefaultTitle
	DateRange string // free text, e.g. "05/11-11/11"
	Data      []byte // raw menu payload JSON
	Filename  string // blank derives the name from Title and DateRange
}

// OutputName returns the PDF file name for the document.
func (d MenuDocument) OutputName() string {
	if d.Filename != "" {
		return d.Filename
	}
	return DeriveFilename(d.Title, d.DateRange)
}

// ExportResult describes a finished export.
type ExportResult struct {
	ID       string // unique per export
	Filename string // derived from title and date range
	Path     string // where the PDF was stored
	Mode     Mode
	Pages    int    // 0 when the page count could not be read
	HTML     string // the printable document
}

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout       time.Duration
	mode          Mode
	outputDir     string
	page          PageSettings
	raster        RasterSettings
	assetPath     string
	markdownNotes bool
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-export timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("menupdf: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithMode selects the export path. Invalid modes are reported by NewExporter.
func WithMode(m Mode) Option {
	return func(e *Exporter) {
		e.cfg.mode = m
	}
}

// WithOutputDir sets where PDFs are stored. Defaults to the working directory.
func WithOutputDir(dir string) Option {
	return func(e *Exporter) {
		e.cfg.outputDir = dir
	}
}

// WithPage sets the page size, orientation and margin.
func WithPage(p PageSettings) Option {
	return func(e *Exporter) {
		e.cfg.page = p
	}
}

// WithRaster tunes the rasterized path.
func WithRaster(r RasterSettings) Option {
	return func(e *Exporter) {
		e.cfg.raster = r
	}
}

// WithAssetPath loads the stylesheet and template from a custom directory,
// falling back to the embedded copies for anything missing.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithMarkdownNotes renders meal notes and assumptions as inline Markdown.
func WithMarkdownNotes(enabled bool) Option {
	return func(e *Exporter) {
		e.cfg.markdownNotes = enabled
	}
}

// WithSink replaces where rasterized PDFs are delivered.
func WithSink(s Sink) Option {
	return func(e *Exporter) {
		e.sink = s
	}
}

// WithSharer runs s on every stored PDF.
func WithSharer(s Sharer) Option {
	return func(e *Exporter) {
		e.sharer = s
	}
}

// WithRasterizer replaces the browser-backed rasterizer.
func WithRasterizer(r DocumentRasterizer) Option {
	return func(e *Exporter) {
		e.rasterizer = r
	}
}
