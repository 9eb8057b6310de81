package menupdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/alnah/go-menupdf/internal/assets"
)

// htmlExporter turns a printable document into a stored PDF.
type htmlExporter interface {
	ExportHTML(ctx context.Context, htmlContent, filename string) (*ExportResult, error)
}

// Compile-time interface implementation checks.
var (
	_ htmlExporter       = (*nativeExporter)(nil)
	_ htmlExporter       = (*rasterExporter)(nil)
	_ pdfPrinter         = (*rodPrinter)(nil)
	_ DocumentRasterizer = (*rodRasterizer)(nil)
)

// Exporter builds a menu document and exports it to PDF.
// Create with NewExporter, call Export per document, and Close when done.
// An Exporter runs one export at a time; use ExporterPool for parallelism.
type Exporter struct {
	cfg        exporterConfig
	builder    *htmlBuilder
	browser    *browserLoader
	printer    pdfPrinter
	rasterizer DocumentRasterizer
	sink       Sink
	sharer     Sharer
}

// NewExporter creates an Exporter. The browser is not started until the
// first export that needs it.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout: defaultTimeout,
			mode:    ModeNative,
			page:    DefaultPageSettings(),
			raster:  DefaultRasterSettings(),
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	mode, err := ParseMode(string(e.cfg.mode))
	if err != nil {
		return nil, err
	}
	e.cfg.mode = mode
	if err := e.cfg.page.Validate(); err != nil {
		return nil, err
	}
	if err := e.cfg.raster.Validate(); err != nil {
		return nil, err
	}

	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if e.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}

	builder, err := newHTMLBuilder(loader, e.cfg.page, e.cfg.markdownNotes)
	if err != nil {
		return nil, err
	}
	e.builder = builder

	e.browser = newBrowserLoader()
	if e.printer == nil {
		e.printer = newRodPrinter(e.browser, e.cfg.timeout)
	}
	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.browser, e.cfg.timeout)
	}
	if e.sink == nil {
		e.sink = &DirSink{Dir: e.cfg.outputDir}
	}

	return e, nil
}

// Mode returns the configured export path.
func (e *Exporter) Mode() Mode {
	return e.cfg.mode
}

// BuildHTML renders the printable document without exporting it.
func (e *Exporter) BuildHTML(ctx context.Context, doc MenuDocument) (string, error) {
	return e.builder.build(ctx, doc)
}

// Export builds doc, exports it with the configured mode and runs the
// sharer. When sharing fails the PDF is already stored: the result is
// returned together with an error wrapping ErrShare.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, doc MenuDocument) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	htmlContent, err := e.builder.build(ctx, doc)
	if err != nil {
		return nil, err
	}

	filename := doc.OutputName()

	res, err := e.exporterFor(e.cfg.mode).ExportHTML(ctx, htmlContent, filename)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", filename, err)
	}
	res.ID = uuid.NewString()
	res.HTML = htmlContent

	if e.sharer != nil {
		if err := e.sharer.Share(ctx, res.Path); err != nil {
			if !errors.Is(err, ErrShare) {
				err = fmt.Errorf("%w: %v", ErrShare, err)
			}
			return res, err
		}
	}
	return res, nil
}

func (e *Exporter) exporterFor(m Mode) htmlExporter {
	if m == ModeRaster {
		return &rasterExporter{
			rasterizer: e.rasterizer,
			sink:       e.sink,
			page:       e.cfg.page,
			settings:   e.cfg.raster,
		}
	}
	return &nativeExporter{printer: e.printer, outputDir: e.cfg.outputDir}
}

// Close releases the headless browser, if one was started.
func (e *Exporter) Close() error {
	if e.browser != nil {
		return e.browser.Close()
	}
	return nil
}
