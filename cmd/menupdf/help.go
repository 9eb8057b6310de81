package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: menupdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export weekly menus to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check browser, environment and output setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'menupdf help <command>' for details on a specific command.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: menupdf export <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export weekly menus to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .json menu, .txt chat reply, directory of those, or - for stdin")
	fmt.Fprintln(w, "           JSON: {\"title\",\"dateRange\",\"data\"}, a menu_chip object, or a payload with \"dias\"")
	fmt.Fprintln(w, "           Text: a reply containing <MENU>{...}</MENU>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --init-config [path]  Write a starter config (default menupdf.yaml)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-export timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -m, --mode <s>            native (browser print) or raster (image pages)")
	fmt.Fprintln(w, "      --raster-width <px>   Raster container width (320-4096, default 794)")
	fmt.Fprintln(w, "      --raster-scale <f>    Raster supersampling (1-4, default 2)")
	fmt.Fprintln(w, "      --raster-safety-margin <px>")
	fmt.Fprintln(w, "                            Space kept free before a card moves to the next page")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Title when the input has none")
	fmt.Fprintln(w, "      --date-range <s>      \"auto\", \"auto:FORMAT\", or literal (e.g. 05/11-11/11)")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: short, br, iso, us")
	fmt.Fprintln(w, "      --markdown-notes      Render meal notes as Markdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a4, letter, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <mm>         Margin in millimeters (10-40)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sharing:")
	fmt.Fprintln(w, "      --open                Open each PDF with the system viewer")
	fmt.Fprintln(w, "      --email <addr>        Send each PDF by email (SMTP from share.email)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --asset-path <dir>    Override styles/menu.css and templates/menu.html")
	fmt.Fprintln(w, "      --html                Also write the HTML document")
	fmt.Fprintln(w, "      --html-only           Write the HTML document only (no browser)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show mode, pages and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MENUPDF_CONFIG, MENUPDF_MODE, MENUPDF_TIMEOUT, MENUPDF_WORKERS,")
	fmt.Fprintln(w, "  MENUPDF_OUTPUT_DIR, MENUPDF_PAGE_SIZE, MENUPDF_TITLE, MENUPDF_DATE_RANGE,")
	fmt.Fprintln(w, "  MENUPDF_ASSET_PATH, MENUPDF_SMTP_PASSWORD")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX (browser launcher)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  menupdf export menu.json")
	fmt.Fprintln(w, "  menupdf export --mode raster -o out/ replies/")
	fmt.Fprintln(w, "  menupdf reply.txt --date-range auto --open")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: menupdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that exports can run here.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Also validate this config file")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory to check (default .)")
}

// runHelp prints help for the named command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdExport:
		printExportUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: menupdf version")
	case cmdCompletion:
		printCompletionUsage(env.Stdout)
	case cmdHelp:
		printUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "%v: %q\n\n", ErrUnknownCommand, args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
