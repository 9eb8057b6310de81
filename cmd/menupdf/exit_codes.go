package main

import (
	"errors"
	"os"

	menupdf "github.com/alnah/go-menupdf"
	"github.com/alnah/go-menupdf/internal/config"
	"github.com/alnah/go-menupdf/internal/dateutil"
)

// Exit codes for the menupdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All exports succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied, output not writable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, menupdf.ErrBrowserConnect) ||
		errors.Is(err, menupdf.ErrPageCreate) ||
		errors.Is(err, menupdf.ErrPageLoad) ||
		errors.Is(err, menupdf.ErrPDFGeneration) ||
		errors.Is(err, menupdf.ErrRasterize) ||
		errors.Is(err, menupdf.ErrMeasure) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, menupdf.ErrMoveOutput) ||
		errors.Is(err, menupdf.ErrSave) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, menupdf.ErrInvalidMode) ||
		errors.Is(err, menupdf.ErrInvalidPageSize) ||
		errors.Is(err, menupdf.ErrInvalidOrientation) ||
		errors.Is(err, menupdf.ErrInvalidMargin) ||
		errors.Is(err, menupdf.ErrInvalidRaster) ||
		errors.Is(err, menupdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrNoMenu) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrConfigExists) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
