//go:build integration

package menupdf

// Notes:
// - Runs real exports through headless Chrome; rod downloads Chromium on first run
// - Set ROD_BROWSER_BIN to use a pre-installed browser

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 60 * time.Second

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

// longPayload builds a week with enough meals to span several pages.
func longPayload() string {
	var b strings.Builder
	b.WriteString(`{"dias":[`)
	for d := 0; d < 7; d++ {
		if d > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"dia":"Dia ` + string(rune('1'+d)) + `","refeicoes":[`)
		for m := 0; m < 6; m++ {
			if m > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"nome":"Refeição","itens":["Arroz","Feijão","Salada","Frango"],"kcal":500,"macros":{"protein_g":30,"carbs_g":50,"fat_g":15},"observacoes":"Sem sal"}`)
		}
		b.WriteString(`]}`)
	}
	b.WriteString(`],"shoppingList":[{"categoria":"Grãos","itens":[{"nome":"Arroz","quantidade":"2 kg"}]}],"assumptions":["2000 kcal"]}`)
	return b.String()
}

func TestExporter_Native_Integration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, err := NewExporter(WithOutputDir(dir), WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	defer e.Close()

	res, err := e.Export(context.Background(), MenuDocument{Title: "Semana 1", DateRange: "05/11-11/11", Data: []byte(samplePayload)})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	assertValidPDF(t, data)
	if res.Pages < 1 {
		t.Errorf("Pages = %d, want at least 1", res.Pages)
	}
}

func TestExporter_Raster_Integration(t *testing.T) {
	t.Parallel()

	sink := newMemorySink()
	e, err := NewExporter(WithMode(ModeRaster), WithSink(sink), WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	defer e.Close()

	res, err := e.Export(context.Background(), MenuDocument{Title: "Semana longa", Data: []byte(longPayload())})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	assertValidPDF(t, sink.files[res.Filename])
	if res.Pages < 2 {
		t.Errorf("Pages = %d, want a multi-page document", res.Pages)
	}
	if got := countPages(sink.files[res.Filename]); got != res.Pages {
		t.Errorf("PDF pages = %d, reported %d", got, res.Pages)
	}
}

func TestRodRasterizer_Integration(t *testing.T) {
	t.Parallel()

	loader := newBrowserLoader()
	defer loader.Close()

	html, err := BuildHTML(MenuDocument{Data: []byte(samplePayload)})
	if err != nil {
		t.Fatal(err)
	}

	settings := DefaultRasterSettings()
	raster, err := newRodRasterizer(loader, testTimeout).Rasterize(context.Background(), html, settings, DefaultPageSettings())
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}

	if raster.Layout.Width != float64(settings.Width) {
		t.Errorf("layout width = %v, want %d", raster.Layout.Width, settings.Width)
	}
	if len(raster.Layout.Cards) != 2 {
		t.Errorf("cards = %d, want 2", len(raster.Layout.Cards))
	}
	if got := raster.Image.Bounds().Dx(); got != int(float64(settings.Width)*settings.Scale) {
		t.Errorf("image width = %d, want %v", got, float64(settings.Width)*settings.Scale)
	}
}
