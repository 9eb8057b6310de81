package menupdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/alnah/go-menupdf/internal/imgpdf"
	"github.com/alnah/go-menupdf/internal/pagebreak"
)

// ---------------------------------------------------------------------------
// Fakes for browser-backed stages
// ---------------------------------------------------------------------------

// fakePrinter returns fixed bytes or an error and records its input.
type fakePrinter struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls []string
}

func (f *fakePrinter) PrintPDF(_ context.Context, htmlContent string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, htmlContent)
	return f.data, f.err
}

// fakeRasterizer returns a striped canvas of the layout's size times scale.
type fakeRasterizer struct {
	layout Layout
	scale  int
	err    error
	panic  bool
	calls  int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, _ RasterSettings, _ PageSettings) (*Raster, error) {
	f.calls++
	if f.panic {
		panic("rasterizer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	scale := f.scale
	if scale == 0 {
		scale = 2
	}
	w := int(f.layout.Width) * scale
	h := int(f.layout.Height) * scale
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		if y%2 == 0 {
			continue // transparent rows must come out white
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 20, G: 80, B: 60, A: 255})
		}
	}
	return &Raster{Image: img, Layout: f.layout}, nil
}

// memorySink keeps saved files in memory.
type memorySink struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemorySink() *memorySink {
	return &memorySink{files: map[string][]byte{}}
}

func (m *memorySink) Save(_ context.Context, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.files[filename] = data
	return "mem://" + filename, nil
}

// fakeSharer records shared paths.
type fakeSharer struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeSharer) Share(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// samplePDF builds a real PDF with the given number of pages.
func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()

	canvas := image.NewRGBA(image.Rect(0, 0, 10, 10*pages))
	var slices []pagebreak.Slice
	for i := 0; i < pages; i++ {
		slices = append(slices, pagebreak.Slice{Start: i * 10, End: (i + 1) * 10})
	}

	var buf bytes.Buffer
	if _, err := (&imgpdf.Assembler{Format: imgpdf.A4}).Write(&buf, canvas, slices); err != nil {
		t.Fatalf("building sample PDF: %v", err)
	}
	return buf.Bytes()
}

const samplePayload = `{
  "type": "menu_chip",
  "dias": [
    {"dia": "Segunda", "refeicoes": [
      {"nome": "Café da manhã", "itens": ["Pão integral", "Ovos"], "kcal": 420,
       "macros": {"protein_g": 30, "carbs_g": 45, "fat_g": 12}, "observacoes": "Sem açúcar"},
      {"nome": "Almoço", "itens": ["Arroz", "Feijão"]}
    ]},
    {"dia": "Terça", "refeicoes": [{"nome": "Jantar", "itens": ["Sopa"]}]}
  ],
  "shoppingList": [{"categoria": "Hortifruti", "itens": [{"nome": "Banana", "quantidade": "6 un"}]}],
  "assumptions": ["2000 kcal por dia"]
}`
