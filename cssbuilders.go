package menupdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Orphan and widow defaults for list items in printed output.
const (
	defaultOrphans = 2
	defaultWidows  = 2
)

// buildPageCSS generates the @page rule for the given settings.
// Unknown sizes fall back to A4; the rule is only consumed by the print engine.
func buildPageCSS(p PageSettings) string {
	size := "A4"
	switch strings.ToLower(p.Size) {
	case PageSizeLetter:
		size = "letter"
	case PageSizeLegal:
		size = "legal"
	}

	orientation := OrientationPortrait
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		orientation = OrientationLandscape
	}

	margin := p.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}

	return fmt.Sprintf("@page { size: %s %s; margin: %smm; }", size, orientation,
		strconv.FormatFloat(margin, 'f', -1, 64))
}

// buildBreakCSS generates the print rules shared by every document:
// headings stay with what follows, and marked sections start a new page.
func buildBreakCSS() string {
	var buf strings.Builder

	buf.WriteString(`
/* Page breaks: keep headings with content */
h1, h2, .day-header, .section-title {
  break-after: avoid;
  page-break-after: avoid;
}
`)

	fmt.Fprintf(&buf, `
/* Page breaks: orphan/widow control */
li, p {
  orphans: %d;
  widows: %d;
}
`, defaultOrphans, defaultWidows)

	buf.WriteString(`
/* Page breaks: explicit markers */
[data-break-before="true"] {
  break-before: page;
  page-break-before: always;
}
`)

	return buf.String()
}
