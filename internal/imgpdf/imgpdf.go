// Package imgpdf assembles a PDF from vertical slices of one raster image.
// Each slice becomes a page, drawn full-bleed from the top-left corner.
package imgpdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	xdraw "golang.org/x/image/draw"

	"github.com/alnah/go-menupdf/internal/pagebreak"
)

// Sentinel errors for PDF assembly.
var (
	ErrNoSlices      = errors.New("no slices to assemble")
	ErrEmptyImage    = errors.New("image has no pixels")
	ErrUnknownFormat = errors.New("unknown page format")
)

// Format is a page format in PDF points.
type Format struct {
	Name   string // fpdf size name: "A4", "Letter", "Legal"
	Width  float64
	Height float64
}

// Standard portrait formats.
var (
	A4     = Format{Name: "A4", Width: 595.28, Height: 841.89}
	Letter = Format{Name: "Letter", Width: 612, Height: 792}
	Legal  = Format{Name: "Legal", Width: 612, Height: 1008}
)

// Landscape returns the format with width and height swapped.
func (f Format) Landscape() Format {
	return Format{Name: f.Name, Width: f.Height, Height: f.Width}
}

// IsLandscape reports whether the format is wider than tall.
func (f Format) IsLandscape() bool {
	return f.Width > f.Height
}

// LookupFormat returns the portrait format for a case-insensitive size name.
func LookupFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "a4":
		return A4, nil
	case "letter":
		return Letter, nil
	case "legal":
		return Legal, nil
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Flatten composites src over a solid background, dropping transparency.
// Printed pages have no alpha channel.
func Flatten(src image.Image, bg color.Color) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), &image.Uniform{C: bg}, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Over)
	return dst
}

// Crop copies the rows of s into a new image of the same width.
func Crop(src image.Image, s pagebreak.Slice) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), s.Height()))
	srcRect := image.Rect(b.Min.X, b.Min.Y+s.Start, b.Max.X, b.Min.Y+s.End)
	xdraw.Copy(dst, image.Point{}, src, srcRect, xdraw.Src, nil)
	return dst
}

// Assembler writes image slices as pages of one PDF document.
type Assembler struct {
	Format Format
}

// Write renders one page per slice of canvas to w and returns the page count.
// Slice heights are scaled by pageWidth/canvasWidth, so a slice one page tall
// in canvas pixels fills the page exactly. Slices of non-positive height are
// skipped.
func (a *Assembler) Write(w io.Writer, canvas image.Image, slices []pagebreak.Slice) (int, error) {
	if len(slices) == 0 {
		return 0, ErrNoSlices
	}
	canvasWidth := canvas.Bounds().Dx()
	if canvasWidth <= 0 || canvas.Bounds().Dy() <= 0 {
		return 0, ErrEmptyImage
	}

	format := a.Format
	if format.Name == "" {
		format = A4
	}
	orientation := "P"
	if format.IsLandscape() {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, "pt", format.Name, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("go-menupdf", true)

	pageWidth, _ := pdf.GetPageSize()
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, s := range slices {
		if s.Height() <= 0 {
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, Crop(canvas, s)); err != nil {
			return 0, fmt.Errorf("encoding slice %d: %w", i, err)
		}

		name := fmt.Sprintf("slice-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		height := float64(s.Height()) * pageWidth / float64(canvasWidth)
		pdf.ImageOptions(name, 0, 0, pageWidth, height, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return 0, fmt.Errorf("placing slice %d: %w", i, err)
		}
	}

	if pdf.PageCount() == 0 {
		return 0, ErrNoSlices
	}
	pages := pdf.PageCount()

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("writing PDF: %w", err)
	}
	return pages, nil
}
