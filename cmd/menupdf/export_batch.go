package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	menupdf "github.com/alnah/go-menupdf"
	"github.com/alnah/go-menupdf/internal/dateutil"
	"github.com/alnah/go-menupdf/internal/fileutil"
	"github.com/alnah/go-menupdf/internal/hints"
)

// ExportOutcome holds the outcome of a single export.
type ExportOutcome struct {
	InputPath  string
	OutputPath string
	Mode       menupdf.Mode
	Pages      int
	Err        error // the export failed, nothing usable was stored
	ShareErr   error // the PDF was stored but could not be shared
	Duration   time.Duration
}

// exportBatch processes files concurrently using the exporter pool.
// Inputs are decoded up front so output names can be made unique in input
// order. Results keep the order of files.
func exportBatch(ctx context.Context, pool Pool, files []inputFile, params *exportParams, stdin io.Reader) []ExportOutcome {
	if len(files) == 0 {
		return nil
	}

	results := make([]ExportOutcome, len(files))
	docs := make([]menupdf.MenuDocument, len(files))
	var pending []int
	for i, f := range files {
		doc, err := prepareInput(f, params, stdin)
		if err != nil {
			results[i] = ExportOutcome{InputPath: f.Path, Err: err}
			continue
		}
		docs[i] = doc
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return results
	}
	assignOutputNames(docs, pending)

	concurrency := min(pool.Size(), len(pending))

	var wg sync.WaitGroup
	jobs := make(chan int, len(pending))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire(ctx)
			if err != nil {
				// Exporter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ExportOutcome{InputPath: files[idx].Path, Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ExportOutcome{InputPath: files[idx].Path, Err: ctx.Err()}
					continue
				}
				results[idx] = exportDocument(ctx, exp, files[idx].Path, docs[idx], params)
			}
		}()
	}

	for _, idx := range pending {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	return results
}

// prepareInput reads and decodes one input and applies batch fallbacks.
func prepareInput(f inputFile, params *exportParams, stdin io.Reader) (menupdf.MenuDocument, error) {
	content, err := readInput(f, stdin)
	if err != nil {
		return menupdf.MenuDocument{}, err
	}
	doc, err := decodeInput(content, f.Kind)
	if err != nil {
		return menupdf.MenuDocument{}, err
	}
	if err := fillDocument(&doc, params); err != nil {
		return menupdf.MenuDocument{}, err
	}
	return doc, nil
}

// assignOutputNames gives every pending document its own file name.
// A name already taken by an earlier input gets "_2", "_3", ... before the
// extension. Names are compared case-insensitively.
func assignOutputNames(docs []menupdf.MenuDocument, pending []int) {
	used := make(map[string]bool, len(pending))
	for _, idx := range pending {
		name := docs[idx].OutputName()
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		used[strings.ToLower(name)] = true
		docs[idx].Filename = name
	}
}

// exportDocument exports one prepared document and returns its outcome.
func exportDocument(ctx context.Context, exp MenuExporter, inputPath string, doc menupdf.MenuDocument, params *exportParams) ExportOutcome {
	start := time.Now()
	result := ExportOutcome{InputPath: inputPath}
	finish := func(err error) ExportOutcome {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if params.htmlOnly {
		htmlContent, err := exp.BuildHTML(ctx, doc)
		if err != nil {
			return finish(err)
		}
		pdfPath := filepath.Join(params.outputDir, doc.OutputName())
		result.OutputPath = htmlOutputPath(pdfPath)
		return finish(writeHTML(result.OutputPath, htmlContent))
	}

	res, err := exp.Export(ctx, doc)
	if res == nil {
		return finish(err)
	}
	result.OutputPath = res.Path
	result.Mode = res.Mode
	result.Pages = res.Pages
	result.ShareErr = err

	if params.html {
		return finish(writeHTML(htmlOutputPath(res.Path), res.HTML))
	}
	return finish(nil)
}

// fillDocument applies batch-wide fallbacks and resolves "auto" ranges
// carried by the input itself.
func fillDocument(doc *menupdf.MenuDocument, params *exportParams) error {
	if doc.Title == "" {
		doc.Title = params.title
	}
	if doc.DateRange == "" {
		doc.DateRange = params.dateRange
		return nil
	}
	resolved, err := dateutil.ResolveRange(doc.DateRange, params.now)
	if err != nil {
		return err
	}
	doc.DateRange = resolved
	return nil
}

func writeHTML(path, content string) error {
	// #nosec G306 -- HTML files are meant to be readable
	if err := fileutil.WriteFileAtomic(path, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

// ResultSummary holds the count of succeeded and failed exports.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Unshared  int // stored but not shared; counted as succeeded
}

// countResults tallies succeeded and failed exports.
func countResults(results []ExportOutcome) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.ShareErr != nil:
			summary.Succeeded++
			summary.Unshared++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// firstError returns the first export failure, in input order.
func firstError(results []ExportOutcome) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// printResults outputs export results and returns the failed count.
// A stored PDF whose sharing failed is reported with its location on
// stderr and does not count as a failure.
func printResults(results []ExportOutcome, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if r.ShareErr != nil {
			fmt.Fprintf(env.Stderr, "Saved %s, sharing failed: %v%s\n", r.OutputPath, r.ShareErr, hintFor(r.ShareErr))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %s, %v)\n",
				r.InputPath, r.OutputPath, modeLabel(r.Mode), pagesLabel(r.Pages), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed", summary.Succeeded, summary.Failed)
		if summary.Unshared > 0 {
			fmt.Fprintf(env.Stdout, " (%d not shared)", summary.Unshared)
		}
		fmt.Fprintln(env.Stdout)
	}

	return summary.Failed
}

func modeLabel(m menupdf.Mode) string {
	if m == "" {
		return "html"
	}
	return string(m)
}

func pagesLabel(n int) string {
	switch n {
	case 0:
		return "? pages"
	case 1:
		return "1 page"
	default:
		return fmt.Sprintf("%d pages", n)
	}
}

// hintFor picks the hint matching err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, menupdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, menupdf.ErrMoveOutput), errors.Is(err, menupdf.ErrSave), errors.Is(err, ErrWriteHTML):
		return hints.ForOutputDirectory()
	case errors.Is(err, menupdf.ErrShare):
		return hints.ForShare()
	case errors.Is(err, ErrNoMenu):
		return hints.ForEmptyInput()
	}
	return ""
}
