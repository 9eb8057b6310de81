package menupdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-menupdf/internal/assets"
	"github.com/alnah/go-menupdf/internal/pipeline"
)

// Document language and section headings.
const (
	documentLang     = "pt-br"
	labelShopping    = "Lista de compras"
	labelAssumptions = "Hipóteses"
)

// htmlBuilder turns a MenuDocument into a standalone printable document.
type htmlBuilder struct {
	renderer *pipeline.MenuRenderer
	notes    *pipeline.NoteConverter // nil renders notes as plain text
	style    string
	page     PageSettings
}

func newHTMLBuilder(loader assets.AssetLoader, page PageSettings, markdownNotes bool) (*htmlBuilder, error) {
	style, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading style: %w", err)
	}
	tmpl, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	renderer, err := pipeline.NewMenuRenderer(tmpl)
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}

	b := &htmlBuilder{renderer: renderer, style: style, page: page}
	if markdownNotes {
		b.notes = pipeline.NewNoteConverter()
	}
	return b, nil
}

// BuildHTML renders doc with the embedded stylesheet on A4 portrait pages.
// Malformed payloads never fail; missing sections are left out.
func BuildHTML(doc MenuDocument) (string, error) {
	b, err := newHTMLBuilder(assets.NewEmbeddedLoader(), DefaultPageSettings(), false)
	if err != nil {
		return "", err
	}
	return b.build(context.Background(), doc)
}

func (b *htmlBuilder) build(ctx context.Context, doc MenuDocument) (string, error) {
	menu := ExtractMenu(doc.Data)

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = DefaultTitle
	}
	var dateRange string
	if r := strings.TrimSpace(doc.DateRange); r != "" {
		dateRange = " (" + r + ")"
	}

	view := pipeline.MenuView{
		Lang:     documentLang,
		Title:    title,
		Range:    dateRange,
		PageCSS:  buildPageCSS(b.page),
		StyleCSS: b.style + buildBreakCSS(),
		Labels:   pipeline.Labels{Shopping: labelShopping, Assumptions: labelAssumptions},
	}

	for _, d := range menu.Days {
		day := pipeline.DayView{Label: d.Label}
		for _, m := range d.Meals {
			meal := pipeline.MealView{
				Name:   m.Name,
				Items:  m.Items,
				Kcal:   formatKcal(m.Kcal),
				Macros: formatMacros(m.Macros),
			}
			if m.Notes != "" {
				note, err := b.rich(ctx, m.Notes)
				if err != nil {
					return "", err
				}
				meal.Note = &note
			}
			day.Meals = append(day.Meals, meal)
		}
		view.Days = append(view.Days, day)
	}

	for _, g := range menu.ShoppingList {
		group := pipeline.ShoppingGroupView{Category: g.Category}
		for _, it := range g.Items {
			group.Items = append(group.Items, pipeline.ShoppingItemView(it))
		}
		view.Shopping = append(view.Shopping, group)
	}

	for _, a := range menu.Assumptions {
		r, err := b.rich(ctx, a)
		if err != nil {
			return "", err
		}
		view.Assumptions = append(view.Assumptions, r)
	}

	out, err := b.renderer.Render(ctx, view)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}
	return out, nil
}

func (b *htmlBuilder) rich(ctx context.Context, text string) (pipeline.Rich, error) {
	r := pipeline.Rich{Text: text}
	if b.notes == nil {
		return r, nil
	}
	h, err := b.notes.ToHTML(ctx, text)
	if err != nil {
		return r, fmt.Errorf("%w: %w", ErrHTMLRender, err)
	}
	r.HTML = h
	return r, nil
}

// formatKcal hides zero values and keeps anything non-numeric verbatim.
func formatKcal(s string) string {
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == 0 {
		return ""
	}
	return s
}

// formatMacros renders "P 30g · C 45g · G 12g", omitting zero fields.
func formatMacros(m Macros) string {
	var parts []string
	for _, f := range []struct {
		label string
		grams float64
	}{
		{"P", m.Protein},
		{"C", m.Carbs},
		{"G", m.Fat},
	} {
		if f.grams != 0 {
			parts = append(parts, f.label+" "+strconv.FormatFloat(f.grams, 'f', -1, 64)+"g")
		}
	}
	return strings.Join(parts, " · ")
}
