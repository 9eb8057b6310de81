package menupdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrHTMLRender     = errors.New("HTML rendering failed")

	// Rasterized path errors.
	ErrRasterize = errors.New("rasterization failed")
	ErrMeasure   = errors.New("layout measurement failed")
	ErrAssemble  = errors.New("PDF assembly failed")

	// Output errors.
	ErrMoveOutput = errors.New("failed to move PDF into output directory")
	ErrSave       = errors.New("failed to save PDF")
	ErrShare      = errors.New("failed to share PDF")

	// Option and settings validation errors.
	ErrInvalidMode        = errors.New("invalid export mode")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidRaster      = errors.New("invalid raster settings")
	ErrInvalidAssetPath   = errors.New("invalid asset path")
	ErrEmptyFilename      = errors.New("filename cannot be empty")
)
