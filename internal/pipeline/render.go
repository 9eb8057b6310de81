package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrMenuRender indicates the menu template failed to execute.
var ErrMenuRender = errors.New("menu template rendering failed")

// Rich is a piece of user text, optionally pre-rendered to safe HTML.
// HTML is only ever produced by NoteConverter; Text is escaped on output.
type Rich struct {
	Text string
	HTML template.HTML
}

// MealView is one meal as rendered in a day card.
type MealView struct {
	Name   string
	Items  []string
	Kcal   string // empty hides the line
	Macros string // empty hides the line
	Note   *Rich
}

// DayView is one day card.
type DayView struct {
	Label string
	Meals []MealView
}

// ShoppingItemView is one shopping line.
type ShoppingItemView struct {
	Name     string
	Quantity string
}

// ShoppingGroupView is one shopping category card.
type ShoppingGroupView struct {
	Category string
	Items    []ShoppingItemView
}

// Labels holds the section headings.
type Labels struct {
	Shopping    string
	Assumptions string
}

// MenuView is everything the menu template reads.
type MenuView struct {
	Lang        string
	Title       string
	Range       string // already formatted, e.g. " (05/11-11/11)"
	PageCSS     string
	StyleCSS    string
	Days        []DayView
	Shopping    []ShoppingGroupView
	Assumptions []Rich
	Labels      Labels
}

// templateData is MenuView with CSS promoted to trusted types.
type templateData struct {
	MenuView
	PageCSS  template.CSS
	StyleCSS template.CSS
}

// MenuRenderer renders a MenuView through an html/template.
type MenuRenderer struct {
	tmpl *template.Template
}

// NewMenuRenderer parses the menu template.
func NewMenuRenderer(tmplContent string) (*MenuRenderer, error) {
	tmpl, err := template.New("menu").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing menu template: %w", err)
	}
	return &MenuRenderer{tmpl: tmpl}, nil
}

// Render executes the template. All view strings are escaped by the
// template engine; stylesheets are trusted but cannot close their element.
func (r *MenuRenderer) Render(ctx context.Context, view MenuView) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := templateData{
		MenuView: view,
		PageCSS:  template.CSS(sanitizeCSS(view.PageCSS)),  // #nosec G203 -- generated @page rule
		StyleCSS: template.CSS(sanitizeCSS(view.StyleCSS)), // #nosec G203 -- loaded from the asset resolver
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMenuRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes "</" so stylesheet content cannot end the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
