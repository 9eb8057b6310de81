package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	menupdf "github.com/alnah/go-menupdf"
	"github.com/alnah/go-menupdf/internal/config"
	"github.com/alnah/go-menupdf/internal/dateutil"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"share only", menupdf.ErrShare, ExitGeneral},

		{"browser connect", menupdf.ErrBrowserConnect, ExitBrowser},
		{"page load wrapped", fmt.Errorf("exporting: %w", menupdf.ErrPageLoad), ExitBrowser},
		{"pdf generation", menupdf.ErrPDFGeneration, ExitBrowser},
		{"rasterize", menupdf.ErrRasterize, ExitBrowser},
		{"measure", menupdf.ErrMeasure, ExitBrowser},

		{"not exist", fmt.Errorf("stat: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"write html", ErrWriteHTML, ExitIO},
		{"save", menupdf.ErrSave, ExitIO},
		{"move output", menupdf.ErrMoveOutput, ExitIO},

		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"date format", dateutil.ErrInvalidDateFormat, ExitUsage},
		{"invalid mode", menupdf.ErrInvalidMode, ExitUsage},
		{"invalid page size", menupdf.ErrInvalidPageSize, ExitUsage},
		{"invalid raster", menupdf.ErrInvalidRaster, ExitUsage},
		{"no menu", ErrNoMenu, ExitUsage},
		{"extension", ErrInvalidExtension, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"config exists", ErrConfigExists, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},

		{"batch unwraps first failure", &batchError{failed: 2, first: menupdf.ErrBrowserConnect}, ExitBrowser},
		{"browser wins over io", errors.Join(os.ErrNotExist, menupdf.ErrBrowserConnect), ExitBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
