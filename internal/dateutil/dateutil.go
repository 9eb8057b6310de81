// Package dateutil resolves "auto" date ranges for menu documents.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is given without a format.
const DefaultDateFormat = "DD/MM"

// rangeSeparator joins the first and last day of a week.
const rangeSeparator = "-"

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common formats.
var DatePresets = map[string]string{
	"short": "DD/MM",
	"br":    "DD/MM/YYYY",
	"iso":   "YYYY-MM-DD",
	"us":    "MM/DD/YYYY",
}

// ParseDateFormat converts a format such as "DD/MM/YYYY" to Go's layout.
// Tokens: YYYY, YY, MM, M, DD, D. Text in brackets is kept literally, as
// is any other character. Month names are not supported: ranges stay
// numeric so they survive filename sanitizing.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var out strings.Builder
	out.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			out.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				out.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(format[i])
			i++
		}
	}
	return out.String(), nil
}

// WeekBounds returns the Monday and Sunday of the week containing t,
// at midnight in t's location.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday = day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// ResolveRange expands "auto" and "auto:FORMAT" to the Monday-Sunday week
// containing now:
//   - "auto" gives "05/11-11/11"
//   - "auto:FORMAT" uses FORMAT for both ends (e.g. "auto:DD/MM/YYYY")
//   - "auto:preset" uses a named preset (short, br, iso, us)
//
// Any other value is returned unchanged.
func ResolveRange(value string, now time.Time) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	format := DefaultDateFormat
	if lower != "auto" {
		if !strings.HasPrefix(lower, "auto:") {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		// Tokens are case-sensitive, so keep the original text.
		format = strings.TrimSpace(value)[len("auto:"):]
		if format == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := DatePresets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	monday, sunday := WeekBounds(now)
	return monday.Format(layout) + rangeSeparator + sunday.Format(layout), nil
}
