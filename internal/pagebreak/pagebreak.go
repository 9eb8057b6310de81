// Package pagebreak computes page boundaries for a document that was
// rendered as one tall raster image.
//
// The functions here are pure. They take box geometry measured by a layout
// engine (a headless browser in production, literals in tests) and return
// offsets and slices, so pagination can be exercised without a renderer.
//
// Two coordinate spaces are involved:
//
//   - DOM space: CSS pixels relative to the top of the mounted container.
//   - Canvas space: pixels of the rasterized image (DOM space times the
//     supersampling factor).
//
// Collect works in DOM space, ToCanvas converts, Plan works in canvas space.
package pagebreak

import (
	"math"
	"slices"
)

// DefaultSafetyMargin is the distance, in DOM pixels, a card bottom must keep
// from the next page boundary to be considered as fitting on the page.
const DefaultSafetyMargin = 12.0

// Box is the vertical extent of a measured element.
type Box struct {
	Top    float64
	Height float64
}

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 {
	return b.Top + b.Height
}

// Layout is the measured geometry of a mounted document, in DOM pixels
// relative to the container's top edge.
type Layout struct {
	Width   float64
	Height  float64
	Markers []float64 // tops of elements flagged as forced breaks
	Cards   []Box     // day cards in document order
}

// Collect returns the break offsets of a layout in DOM space.
//
// Every marker contributes its top. Cards are then walked in document order
// with a rolling page boundary starting at one page height: a card whose
// bottom crosses the boundary minus safetyMargin gets a break at its top and
// the boundary moves one page below that top; a card that starts past the
// boundary re-synchronizes the boundary to the next page multiple.
//
// The result is neither sorted nor deduplicated; see ToCanvas.
func Collect(l Layout, pageHeight, safetyMargin float64) []float64 {
	offsets := make([]float64, 0, len(l.Markers)+len(l.Cards))
	for _, top := range l.Markers {
		offsets = append(offsets, math.Max(0, top))
	}

	if pageHeight <= 0 {
		return offsets
	}

	boundary := pageHeight
	for _, card := range l.Cards {
		switch {
		case card.Bottom() > boundary-safetyMargin:
			offsets = append(offsets, math.Max(0, card.Top))
			boundary = card.Top + pageHeight
		case card.Top >= boundary:
			boundary = math.Ceil(card.Top/pageHeight) * pageHeight
		}
	}
	return offsets
}

// ToCanvas converts DOM offsets to canvas pixels.
// Offsets are scaled and rounded, values outside (0, canvasHeight) are
// dropped, and the result is sorted ascending without duplicates.
func ToCanvas(offsets []float64, scale float64, canvasHeight int) []int {
	out := make([]int, 0, len(offsets))
	for _, off := range offsets {
		px := int(math.Round(off * scale))
		if px <= 0 || px >= canvasHeight {
			continue
		}
		out = append(out, px)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// PageHeightPx returns the height of one page in canvas pixels, given the
// canvas width and the page format in points. The canvas width always maps
// to the full page width.
func PageHeightPx(canvasWidth int, pageWidthPt, pageHeightPt float64) float64 {
	if canvasWidth <= 0 || pageWidthPt <= 0 {
		return 0
	}
	pxPerPt := float64(canvasWidth) / pageWidthPt
	return pageHeightPt * pxPerPt
}

// Slice is a half-open vertical range [Start, End) of the canvas that
// becomes one output page.
type Slice struct {
	Start int
	End   int
}

// Height returns the number of pixel rows in the slice.
func (s Slice) Height() int {
	return s.End - s.Start
}

// Plan cuts [0, canvasHeight) into page slices.
//
// The cursor advances one page height at a time, except when the next
// scheduled break falls inside the current window: the page then ends at
// the break and the break is consumed. Breaks at or just behind the cursor
// are discarded, and a break one pixel short of a full page is ignored so
// no sliver pages appear. The slices are contiguous, so their heights always
// add up to canvasHeight.
func Plan(canvasHeight int, pageHeight float64, breaks []int) []Slice {
	if canvasHeight <= 0 {
		return nil
	}

	step := int(math.Floor(pageHeight))
	if step < 1 {
		step = 1
	}

	queue := slices.Clone(breaks)
	out := make([]Slice, 0, canvasHeight/step+len(breaks)+1)

	pos := 0
	for pos < canvasHeight {
		for len(queue) > 0 && queue[0] <= pos+1 {
			queue = queue[1:]
		}

		target := min(pos+step, canvasHeight)
		if len(queue) > 0 && queue[0] < target-1 {
			target = queue[0]
			queue = queue[1:]
		}

		if target <= pos {
			pos++
			continue
		}

		out = append(out, Slice{Start: pos, End: target})
		pos = target
	}
	return out
}

// Paginate runs the whole computation for a rasterized layout: DOM breaks,
// conversion to canvas space, and slicing. canvasWidth and canvasHeight are
// the raster dimensions; the page format is given in points.
func Paginate(l Layout, canvasWidth, canvasHeight int, pageWidthPt, pageHeightPt, safetyMargin float64) ([]Slice, []int) {
	pageHeightPx := PageHeightPx(canvasWidth, pageWidthPt, pageHeightPt)

	scale := 1.0
	if l.Height > 0 {
		scale = float64(canvasHeight) / l.Height
	}

	offsets := Collect(l, pageHeightPx/scale, safetyMargin)
	breaks := ToCanvas(offsets, scale, canvasHeight)
	return Plan(canvasHeight, pageHeightPx, breaks), breaks
}
