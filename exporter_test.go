package menupdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// newTestExporter builds an Exporter whose browser-backed stages are fakes.
func newTestExporter(t *testing.T, printer pdfPrinter, opts ...Option) *Exporter {
	t.Helper()

	e, err := NewExporter(opts...)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	if printer != nil {
		e.printer = printer
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func sampleDocument() MenuDocument {
	return MenuDocument{
		Title:     "Cardápio: Semana 1!!",
		DateRange: "05/11-11/11",
		Data:      []byte(samplePayload),
	}
}

// ---------------------------------------------------------------------------
// TestNewExporter
// ---------------------------------------------------------------------------

func TestNewExporter_Defaults(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, nil)
	if e.Mode() != ModeNative {
		t.Errorf("Mode() = %q, want native", e.Mode())
	}
	if e.cfg.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", e.cfg.timeout, defaultTimeout)
	}
	if _, ok := e.sink.(*DirSink); !ok {
		t.Errorf("sink = %T, want *DirSink", e.sink)
	}
}

func TestNewExporter_NormalizesMode(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, nil, WithMode("RASTER"))
	if e.Mode() != ModeRaster {
		t.Errorf("Mode() = %q, want raster", e.Mode())
	}
}

func TestNewExporter_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{"mode", WithMode("pdf"), ErrInvalidMode},
		{"page size", WithPage(PageSettings{Size: "a0", Orientation: "portrait", Margin: 20}), ErrInvalidPageSize},
		{"margin", WithPage(PageSettings{Size: "a4", Orientation: "portrait", Margin: 2}), ErrInvalidMargin},
		{"raster", WithRaster(RasterSettings{Width: 10, Scale: 2}), ErrInvalidRaster},
		{"asset path", WithAssetPath(filepath.Join(os.TempDir(), "menupdf-missing-"+uuid.NewString())), ErrInvalidAssetPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := NewExporter(tt.opt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewExporter() error = %v, want %v", err, tt.wantErr)
			}
			if e != nil {
				t.Error("NewExporter() should return nil on error")
			}
		})
	}
}

func TestNewExporter_CustomAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "styles", "menu.css"), []byte(".custom-marker { color: red; }"), 0o600); err != nil {
		t.Fatal(err)
	}

	e := newTestExporter(t, nil, WithAssetPath(dir))
	got, err := e.BuildHTML(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("BuildHTML() error = %v", err)
	}
	if !strings.Contains(got, ".custom-marker") {
		t.Error("custom stylesheet should be used")
	}
	if !strings.Contains(got, `class="day-card"`) {
		t.Error("embedded template should be the fallback")
	}
}

// ---------------------------------------------------------------------------
// TestExporter_Export
// ---------------------------------------------------------------------------

func TestExporter_Export_Native(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	printer := &fakePrinter{data: samplePDF(t, 1)}
	e := newTestExporter(t, printer, WithOutputDir(dir))

	res, err := e.Export(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wantName := "Cardapio_Semana_1_0511-1111.pdf"
	if res.Filename != wantName {
		t.Errorf("Filename = %q, want %q", res.Filename, wantName)
	}
	if res.Path != filepath.Join(dir, wantName) {
		t.Errorf("Path = %q", res.Path)
	}
	if _, err := uuid.Parse(res.ID); err != nil {
		t.Errorf("ID = %q is not a UUID", res.ID)
	}
	if res.Pages != 1 || res.Mode != ModeNative {
		t.Errorf("Pages = %d, Mode = %q", res.Pages, res.Mode)
	}
	if len(printer.calls) != 1 || printer.calls[0] != res.HTML {
		t.Error("printer should receive the built document")
	}
	if !strings.Contains(res.HTML, "@page { size: A4 portrait; margin: 20mm; }") {
		t.Error("native document should carry the page rule")
	}
}

func TestExporter_Export_ExplicitFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := newTestExporter(t, &fakePrinter{data: samplePDF(t, 1)}, WithOutputDir(dir))

	doc := sampleDocument()
	doc.Filename = "Cardapio_Semana_1_0511-1111_2.pdf"
	res, err := e.Export(context.Background(), doc)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Path != filepath.Join(dir, doc.Filename) {
		t.Errorf("Path = %q, want file named %q", res.Path, doc.Filename)
	}
}

func TestExporter_Export_Raster(t *testing.T) {
	t.Parallel()

	sink := newMemorySink()
	rasterizer := &fakeRasterizer{layout: Layout{Width: 100, Height: 300, Markers: []float64{200}}}
	e := newTestExporter(t, nil, WithMode(ModeRaster), WithRasterizer(rasterizer), WithSink(sink))

	res, err := e.Export(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Mode != ModeRaster || res.Pages != 3 {
		t.Errorf("Mode = %q, Pages = %d", res.Mode, res.Pages)
	}
	if res.Path != "mem://Cardapio_Semana_1_0511-1111.pdf" {
		t.Errorf("Path = %q", res.Path)
	}
	if rasterizer.calls != 1 {
		t.Errorf("rasterizer calls = %d, want 1", rasterizer.calls)
	}
}

func TestExporter_Export_UniqueIDs(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, &fakePrinter{data: samplePDF(t, 1)}, WithOutputDir(t.TempDir()))

	first, err := e.Export(context.Background(), sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Export(context.Background(), sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Error("each export should get its own ID")
	}
}

func TestExporter_Export_Share(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		sharer := &fakeSharer{}
		e := newTestExporter(t, &fakePrinter{data: samplePDF(t, 1)}, WithOutputDir(t.TempDir()), WithSharer(sharer))

		res, err := e.Export(context.Background(), sampleDocument())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if len(sharer.paths) != 1 || sharer.paths[0] != res.Path {
			t.Errorf("shared paths = %v, want [%s]", sharer.paths, res.Path)
		}
	})

	t.Run("failure keeps result", func(t *testing.T) {
		t.Parallel()

		sharer := &fakeSharer{err: errors.New("smtp down")}
		e := newTestExporter(t, &fakePrinter{data: samplePDF(t, 1)}, WithOutputDir(t.TempDir()), WithSharer(sharer))

		res, err := e.Export(context.Background(), sampleDocument())
		if !errors.Is(err, ErrShare) {
			t.Fatalf("Export() error = %v, want ErrShare", err)
		}
		if res == nil {
			t.Fatal("result should be returned when only sharing failed")
		}
		if _, statErr := os.Stat(res.Path); statErr != nil {
			t.Errorf("PDF should exist: %v", statErr)
		}
	})
}

func TestExporter_Export_Errors(t *testing.T) {
	t.Parallel()

	t.Run("printer failure names the file", func(t *testing.T) {
		t.Parallel()

		e := newTestExporter(t, &fakePrinter{err: ErrPDFGeneration}, WithOutputDir(t.TempDir()))
		_, err := e.Export(context.Background(), sampleDocument())
		if !errors.Is(err, ErrPDFGeneration) {
			t.Fatalf("Export() error = %v, want ErrPDFGeneration", err)
		}
		if !strings.Contains(err.Error(), "Cardapio_Semana_1_0511-1111.pdf") {
			t.Errorf("error should name the file: %v", err)
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		e := newTestExporter(t, nil, WithMode(ModeRaster), WithRasterizer(&fakeRasterizer{panic: true}), WithSink(newMemorySink()))
		res, err := e.Export(context.Background(), sampleDocument())
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("Export() error = %v, want internal error", err)
		}
		if res != nil {
			t.Error("result should be nil after a panic")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := newTestExporter(t, &fakePrinter{data: samplePDF(t, 1)}, WithOutputDir(t.TempDir()))
		if _, err := e.Export(ctx, sampleDocument()); !errors.Is(err, context.Canceled) {
			t.Errorf("Export() error = %v, want context.Canceled", err)
		}
	})
}

func TestExporter_BuildHTML(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, nil, WithPage(PageSettings{Size: "legal", Orientation: "landscape", Margin: 25}))
	got, err := e.BuildHTML(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("BuildHTML() error = %v", err)
	}
	if !strings.Contains(got, "@page { size: legal landscape; margin: 25mm; }") {
		t.Error("page rule should follow WithPage")
	}
}

func TestExporter_CloseIdempotent(t *testing.T) {
	t.Parallel()

	e, err := NewExporter()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
