package menupdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-menupdf/internal/fileutil"
)

// pdfPrinter abstracts printing an HTML document so the native path can be
// tested without a browser.
type pdfPrinter interface {
	PrintPDF(ctx context.Context, htmlContent string) ([]byte, error)
}

// rodPrinter prints through Chrome's print engine. Page size and margins
// come from the document's @page rule.
type rodPrinter struct {
	browser *browserLoader
	timeout time.Duration
}

func newRodPrinter(b *browserLoader, timeout time.Duration) *rodPrinter {
	return &rodPrinter{browser: b, timeout: timeout}
}

// PrintPDF loads htmlContent from a temp file and prints it.
func (p *rodPrinter) PrintPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile([]byte(htmlContent), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browser, err := p.browser.Get(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL(tmpPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout, err := remaining(ctx, p.timeout)
	if err != nil {
		return nil, err
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// nativeExporter prints HTML and moves the result into the output directory.
type nativeExporter struct {
	printer   pdfPrinter
	outputDir string
}

// ExportHTML prints htmlContent and stores it as outputDir/filename.
// No retry is attempted; a failed move leaves nothing at the destination.
func (n *nativeExporter) ExportHTML(ctx context.Context, htmlContent, filename string) (*ExportResult, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	data, err := n.printer.PrintPDF(ctx, htmlContent)
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(data, "pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoveOutput, err)
	}
	defer cleanup()

	dir := n.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoveOutput, err)
	}
	dst := filepath.Join(dir, filename)
	if err := fileutil.MoveFile(tmpPath, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoveOutput, err)
	}

	return &ExportResult{
		Filename: filename,
		Path:     dst,
		Mode:     ModeNative,
		Pages:    countPages(data),
	}, nil
}

// countPages reads the page count of a PDF, or 0 if it cannot be parsed.
func countPages(data []byte) int {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0
	}
	return n
}

// remaining returns the time left before ctx's deadline, or fallback.
func remaining(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
		return d, nil
	}
	return fallback, nil
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
