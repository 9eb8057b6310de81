// Package hints appends actionable advice to CLI error messages.
// Every hint reads "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-menupdf/internal/fileutil"
)

// IsInContainer detects Docker through the /.dockerenv marker file.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the environment variables the launcher reads.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout suggests a longer timeout.
func ForTimeout() string {
	return format("for long menus or raster mode, raise --timeout")
}

// ForConfigNotFound suggests --config and the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or run --init-config"
	for _, p := range searchedPaths {
		if strings.Contains(slashed(p), "/go-menupdf/") {
			hint += "; or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForShare reminds that the PDF exists and points at the share settings.
func ForShare() string {
	return format("the PDF was saved; check share.email host, port and credentials, or that a PDF viewer is installed")
}

// ForEmptyInput explains what an input file must contain.
func ForEmptyInput() string {
	return format(`expected {"title","dateRange","data"}, a menu payload with "dias", or a reply with <MENU>{...}</MENU>`)
}

// slashed normalizes separators so matching works on Windows paths too.
func slashed(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
