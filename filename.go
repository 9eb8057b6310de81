package menupdf

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-menupdf/internal/chip"
)

// DefaultTitle is used when a document has no title.
const DefaultTitle = chip.DefaultTitle

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_\- ]+`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
	nonRangeChars       = regexp.MustCompile(`[^0-9-]+`)
)

// DeriveFilename builds a filesystem-safe PDF name from a title and an
// optional date range. Accents are folded to ASCII, other characters
// outside [A-Za-z0-9_- ] are dropped, whitespace runs become "_", and the
// date range contributes only its digits and hyphens.
//
//	DeriveFilename("Cardápio: Semana 1!!", "05/11-11/11") == "Cardapio_Semana_1_0511-1111.pdf"
func DeriveFilename(title, dateRange string) string {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	base := unsafeFilenameChars.ReplaceAllString(foldASCII(title), "")
	base = whitespaceRun.ReplaceAllString(strings.TrimSpace(base), "_")
	if base == "" {
		base = whitespaceRun.ReplaceAllString(foldASCII(DefaultTitle), "_")
	}

	if dateRange != "" {
		if r := nonRangeChars.ReplaceAllString(dateRange, ""); r != "" {
			base += "_" + r
		}
	}
	return base + ".pdf"
}

// foldASCII strips combining marks after canonical decomposition,
// so "Cardápio" becomes "Cardapio".
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
