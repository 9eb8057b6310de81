package menupdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/alnah/go-menupdf/internal/fileutil"
	"github.com/alnah/go-menupdf/internal/pagebreak"
	"github.com/alnah/go-menupdf/internal/pipeline"
)

// Box is a vertical extent in CSS px, relative to the container top.
type Box struct {
	Top    float64
	Height float64
}

// Layout is the measured geometry of a mounted document.
type Layout struct {
	Width   float64   // container width in CSS px
	Height  float64   // container height in CSS px
	Markers []float64 // tops of elements marked data-break-before="true"
	Cards   []Box     // day cards in document order
}

func (l Layout) toPagebreak() pagebreak.Layout {
	cards := make([]pagebreak.Box, len(l.Cards))
	for i, c := range l.Cards {
		cards[i] = pagebreak.Box(c)
	}
	return pagebreak.Layout{
		Width:   l.Width,
		Height:  l.Height,
		Markers: l.Markers,
		Cards:   cards,
	}
}

// Raster is a rendered document and the layout it was captured from.
type Raster struct {
	Image  image.Image
	Layout Layout
}

// DocumentRasterizer renders an HTML document to one tall image.
type DocumentRasterizer interface {
	Rasterize(ctx context.Context, htmlContent string, settings RasterSettings, page PageSettings) (*Raster, error)
}

// measureScript reports container geometry as JSON. Runtime values cross
// the protocol as a string so the shape is decoded on the Go side.
const measureScript = `(id) => {
  const c = document.getElementById(id);
  if (!c) { return ""; }
  const r = c.getBoundingClientRect();
  const rel = (el) => { const b = el.getBoundingClientRect(); return { top: b.top - r.top, height: b.height }; };
  return JSON.stringify({
    width: r.width,
    height: r.height,
    markers: Array.from(c.querySelectorAll("[data-break-before='true']")).map((el) => rel(el).top),
    cards: Array.from(c.querySelectorAll(".day-card")).map(rel),
  });
}`

// frameScript resolves after the next animation frame.
const frameScript = `() => new Promise((resolve) => requestAnimationFrame(() => resolve()))`

type measuredLayout struct {
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	Markers []float64 `json:"markers"`
	Cards   []struct {
		Top    float64 `json:"top"`
		Height float64 `json:"height"`
	} `json:"cards"`
}

// rodRasterizer mounts the document in its own headless page and captures it.
type rodRasterizer struct {
	browser *browserLoader
	timeout time.Duration
}

func newRodRasterizer(b *browserLoader, timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{browser: b, timeout: timeout}
}

// Rasterize mounts htmlContent in a fixed-width container, waits one frame,
// measures the layout and screenshots the container at settings.Scale.
// The page is closed on every return path.
func (r *rodRasterizer) Rasterize(ctx context.Context, htmlContent string, settings RasterSettings, pageSettings PageSettings) (*Raster, error) {
	format := pageSettings.format()
	containerID := "menupdf-" + uuid.NewString()
	minHeight := int(math.Round(float64(settings.Width) * format.Height / format.Width))

	mount, err := pipeline.BuildMount(htmlContent, pipeline.MountOptions{
		ContainerID: containerID,
		Width:       settings.Width,
		MinHeight:   minHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile([]byte(mount), "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	defer cleanup()

	browser, err := r.browser.Get(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL(tmpPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout, err := remaining(ctx, r.timeout)
	if err != nil {
		return nil, err
	}
	p := page.Context(ctx).Timeout(timeout)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             settings.Width,
		Height:            minHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrRasterize, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if _, err := p.Eval(frameScript); err != nil {
		return nil, fmt.Errorf("%w: waiting for frame: %v", ErrRasterize, err)
	}

	res, err := p.Eval(measureScript, containerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMeasure, err)
	}
	layout, err := decodeLayout(res.Value.Str())
	if err != nil {
		return nil, err
	}

	shot, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  layout.Width,
			Height: layout.Height,
			Scale:  settings.Scale,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrRasterize, err)
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrRasterize, err)
	}

	return &Raster{Image: img, Layout: layout}, nil
}

// decodeLayout parses the measurement script output.
func decodeLayout(raw string) (Layout, error) {
	if raw == "" {
		return Layout{}, fmt.Errorf("%w: container not found", ErrMeasure)
	}
	var m measuredLayout
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrMeasure, err)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return Layout{}, fmt.Errorf("%w: empty container (%gx%g)", ErrMeasure, m.Width, m.Height)
	}

	l := Layout{Width: m.Width, Height: m.Height, Markers: m.Markers}
	for _, c := range m.Cards {
		l.Cards = append(l.Cards, Box{Top: c.Top, Height: c.Height})
	}
	return l, nil
}
