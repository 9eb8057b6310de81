package menupdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func pdfPageCount(t *testing.T, data []byte) int {
	t.Helper()

	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	return n
}

// ---------------------------------------------------------------------------
// TestRasterExporter
// ---------------------------------------------------------------------------

func TestRasterExporter_ExportHTML(t *testing.T) {
	t.Parallel()

	// A 100 CSS px wide layout at scale 2 gives a 200 px canvas; one A4 page
	// is then about 282 canvas px tall.
	tests := []struct {
		name      string
		layout    Layout
		wantPages int
	}{
		{
			name:      "fits on one page",
			layout:    Layout{Width: 100, Height: 100},
			wantPages: 1,
		},
		{
			name:      "marker forces an early break",
			layout:    Layout{Width: 100, Height: 300, Markers: []float64{200}},
			wantPages: 3,
		},
		{
			name:      "plain overflow",
			layout:    Layout{Width: 100, Height: 300},
			wantPages: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := newMemorySink()
			r := &rasterExporter{
				rasterizer: &fakeRasterizer{layout: tt.layout},
				sink:       sink,
				page:       DefaultPageSettings(),
				settings:   DefaultRasterSettings(),
			}

			res, err := r.ExportHTML(context.Background(), "<html></html>", "Menu.pdf")
			if err != nil {
				t.Fatalf("ExportHTML() error = %v", err)
			}
			if res.Mode != ModeRaster {
				t.Errorf("Mode = %q, want raster", res.Mode)
			}
			if res.Path != "mem://Menu.pdf" {
				t.Errorf("Path = %q", res.Path)
			}
			if res.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", res.Pages, tt.wantPages)
			}
			if got := pdfPageCount(t, sink.files["Menu.pdf"]); got != tt.wantPages {
				t.Errorf("PDF pages = %d, want %d", got, tt.wantPages)
			}
		})
	}
}

func TestRasterExporter_Errors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	failingSink := newMemorySink()
	failingSink.err = errors.New("disk full")

	tests := []struct {
		name       string
		ctx        context.Context
		rasterizer DocumentRasterizer
		sink       Sink
		filename   string
		wantErr    error
	}{
		{
			name:       "empty filename",
			ctx:        context.Background(),
			rasterizer: &fakeRasterizer{layout: Layout{Width: 10, Height: 10}},
			sink:       newMemorySink(),
			wantErr:    ErrEmptyFilename,
		},
		{
			name:       "rasterizer failure",
			ctx:        context.Background(),
			rasterizer: &fakeRasterizer{err: ErrMeasure},
			sink:       newMemorySink(),
			filename:   "m.pdf",
			wantErr:    ErrMeasure,
		},
		{
			name:       "nil image",
			ctx:        context.Background(),
			rasterizer: nilRasterizer{},
			sink:       newMemorySink(),
			filename:   "m.pdf",
			wantErr:    ErrRasterize,
		},
		{
			name:       "empty canvas",
			ctx:        context.Background(),
			rasterizer: &fakeRasterizer{layout: Layout{}},
			sink:       newMemorySink(),
			filename:   "m.pdf",
			wantErr:    ErrRasterize,
		},
		{
			name:       "sink failure",
			ctx:        context.Background(),
			rasterizer: &fakeRasterizer{layout: Layout{Width: 10, Height: 10}},
			sink:       failingSink,
			filename:   "m.pdf",
			wantErr:    ErrSave,
		},
		{
			name:       "cancelled after rasterizing",
			ctx:        cancelled,
			rasterizer: &fakeRasterizer{layout: Layout{Width: 10, Height: 10}},
			sink:       newMemorySink(),
			filename:   "m.pdf",
			wantErr:    context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &rasterExporter{
				rasterizer: tt.rasterizer,
				sink:       tt.sink,
				page:       DefaultPageSettings(),
				settings:   DefaultRasterSettings(),
			}
			_, err := r.ExportHTML(tt.ctx, "x", tt.filename)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExportHTML() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// nilRasterizer returns a result without an image.
type nilRasterizer struct{}

func (nilRasterizer) Rasterize(context.Context, string, RasterSettings, PageSettings) (*Raster, error) {
	return &Raster{Image: nil}, nil
}

func TestRasterExporter_FlattensTransparency(t *testing.T) {
	t.Parallel()

	r := &rasterExporter{page: DefaultPageSettings(), settings: DefaultRasterSettings()}
	raster, err := (&fakeRasterizer{layout: Layout{Width: 10, Height: 10}}).Rasterize(context.Background(), "", r.settings, r.page)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := raster.Image.(*image.NRGBA); !ok {
		t.Fatalf("fake image type = %T", raster.Image)
	}
	data, pages, err := r.assemble(raster)
	if err != nil {
		t.Fatalf("assemble() error = %v", err)
	}
	if pages != 1 || len(data) == 0 {
		t.Errorf("assemble() = %d bytes, %d pages", len(data), pages)
	}
}

// ---------------------------------------------------------------------------
// TestDecodeLayout
// ---------------------------------------------------------------------------

func TestDecodeLayout(t *testing.T) {
	t.Parallel()

	got, err := decodeLayout(`{"width":794,"height":2000,"markers":[900],"cards":[{"top":10,"height":300}]}`)
	if err != nil {
		t.Fatalf("decodeLayout() error = %v", err)
	}
	if got.Width != 794 || got.Height != 2000 || len(got.Markers) != 1 || got.Cards[0] != (Box{Top: 10, Height: 300}) {
		t.Errorf("decodeLayout() = %+v", got)
	}

	for _, bad := range []string{"", "{", `{"width":0,"height":10}`} {
		if _, err := decodeLayout(bad); !errors.Is(err, ErrMeasure) {
			t.Errorf("decodeLayout(%q) error = %v, want ErrMeasure", bad, err)
		}
	}
}
