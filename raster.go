package menupdf

import (
	"bytes"
	"context"
	"fmt"
	"image/color"

	"github.com/alnah/go-menupdf/internal/imgpdf"
	"github.com/alnah/go-menupdf/internal/pagebreak"
)

// rasterExporter renders HTML to one tall image, cuts it at page breaks
// and assembles one full-bleed page per slice.
type rasterExporter struct {
	rasterizer DocumentRasterizer
	sink       Sink
	page       PageSettings
	settings   RasterSettings
}

// ExportHTML rasterizes htmlContent and hands the assembled PDF to the sink.
func (r *rasterExporter) ExportHTML(ctx context.Context, htmlContent, filename string) (*ExportResult, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	raster, err := r.rasterizer.Rasterize(ctx, htmlContent, r.settings, r.page)
	if err != nil {
		return nil, err
	}
	if raster == nil || raster.Image == nil {
		return nil, fmt.Errorf("%w: no image produced", ErrRasterize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf, pages, err := r.assemble(raster)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.sink.Save(ctx, filename, pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSave, err)
	}

	return &ExportResult{
		Filename: filename,
		Path:     path,
		Mode:     ModeRaster,
		Pages:    pages,
	}, nil
}

// assemble flattens the canvas onto white, plans slices and writes the PDF.
func (r *rasterExporter) assemble(raster *Raster) ([]byte, int, error) {
	canvas := imgpdf.Flatten(raster.Image, color.White)
	bounds := canvas.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, 0, fmt.Errorf("%w: empty canvas", ErrRasterize)
	}

	format := r.page.format()
	slices, _ := pagebreak.Paginate(
		raster.Layout.toPagebreak(),
		bounds.Dx(), bounds.Dy(),
		format.Width, format.Height,
		r.settings.SafetyMargin,
	)

	var buf bytes.Buffer
	pages, err := (&imgpdf.Assembler{Format: format}).Write(&buf, canvas, slices)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrAssemble, err)
	}
	return buf.Bytes(), pages, nil
}
