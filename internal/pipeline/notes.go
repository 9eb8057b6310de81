package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrNoteConversion indicates a note could not be rendered as Markdown.
var ErrNoteConversion = errors.New("note conversion failed")

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// NoteConverter renders short Markdown notes to HTML fragments.
// Raw HTML in the source is dropped, so the output is safe to embed.
type NoteConverter struct {
	md goldmark.Markdown
}

// NewNoteConverter creates a NoteConverter with strikethrough and autolinks.
func NewNoteConverter() *NoteConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &NoteConverter{md: md}
}

// ToHTML converts one note. Goldmark has no context support, so the
// conversion runs in a goroutine and ctx bounds the wait.
func (c *NoteConverter) ToHTML(ctx context.Context, text string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html template.HTML
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(normalizeNote(text)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrNoteConversion, err)}
			return
		}
		// #nosec G203 -- goldmark output without WithUnsafe escapes raw HTML
		done <- result{html: template.HTML(strings.TrimSpace(buf.String()))}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// normalizeNote unifies line endings and collapses long blank runs.
func normalizeNote(s string) string {
	s = crlfOrCR.ReplaceAllString(s, "\n")
	s = multipleBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
