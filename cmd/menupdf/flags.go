package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// exportModeFlags selects the export path and its limits.
type exportModeFlags struct {
	mode    string
	timeout string
	workers int
}

// documentFlags fill in what an input file does not carry.
type documentFlags struct {
	title         string
	dateRange     string
	markdownNotes bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// rasterFlags tune the rasterized path.
type rasterFlags struct {
	width        int
	scale        float64
	safetyMargin float64
}

// shareFlags control what happens once a PDF is stored.
type shareFlags struct {
	open    bool
	emailTo string
}

// outputFlags holds output mode flags for debugging.
type outputFlags struct {
	html     bool // write HTML alongside PDF
	htmlOnly bool // write HTML only, skip the browser
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common     commonFlags
	output     string
	export     exportModeFlags
	document   documentFlags
	page       pageFlags
	raster     rasterFlags
	share      shareFlags
	assetPath  string
	outputMode outputFlags
	initConfig bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addExportModeFlags adds mode, timeout and worker flags to a FlagSet.
func addExportModeFlags(fs *flag.FlagSet, f *exportModeFlags) {
	fs.StringVarP(&f.mode, "mode", "m", "", "export path: native, raster")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-export timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "title when the input has none")
	fs.StringVar(&f.dateRange, "date-range", "", "date range: \"auto\", \"auto:FORMAT\", or literal")
	fs.BoolVar(&f.markdownNotes, "markdown-notes", false, "render meal notes as Markdown")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "margin in millimeters (10-40)")
}

// addRasterFlags adds raster tuning flags to a FlagSet.
func addRasterFlags(fs *flag.FlagSet, f *rasterFlags) {
	fs.IntVar(&f.width, "raster-width", 0, "raster container width in CSS px")
	fs.Float64Var(&f.scale, "raster-scale", 0, "raster supersampling factor (1-4)")
	fs.Float64Var(&f.safetyMargin, "raster-safety-margin", 0, "CSS px kept free before a card is pushed")
}

// addShareFlags adds sharing flags to a FlagSet.
func addShareFlags(fs *flag.FlagSet, f *shareFlags) {
	fs.BoolVar(&f.open, "open", false, "open each PDF with the system viewer")
	fs.StringVar(&f.emailTo, "email", "", "send each PDF to this address (needs share.email in config)")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "also write the HTML document")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write the HTML document only")
}

// newExportFlagSet registers every export flag on a new FlagSet.
// Shared by parseExportFlags and shell completion.
func newExportFlagSet(w io.Writer) (*flag.FlagSet, *exportFlags) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	f := &exportFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with styles/ and templates/ overrides")
	fs.BoolVar(&f.initConfig, "init-config", false, "write a starter config file and exit")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addExportModeFlags(fs, &f.export)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addRasterFlags(fs, &f.raster)
	addShareFlags(fs, &f.share)
	addOutputFlags(fs, &f.outputMode)

	fs.SetOutput(w)
	fs.Usage = func() { printExportUsage(w) }
	return fs, f
}

// parseExportFlags parses export command flags and returns positional args.
// Usage is written to w.
func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	fs, f := newExportFlagSet(w)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
