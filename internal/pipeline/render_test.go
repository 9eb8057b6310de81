package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-menupdf/internal/assets"
)

func loadMenuTemplate(t *testing.T) string {
	t.Helper()

	tmpl, err := assets.NewEmbeddedLoader().LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		t.Fatalf("loading menu template: %v", err)
	}
	return tmpl
}

func newRenderer(t *testing.T) *MenuRenderer {
	t.Helper()

	r, err := NewMenuRenderer(loadMenuTemplate(t))
	if err != nil {
		t.Fatalf("NewMenuRenderer() error = %v", err)
	}
	return r
}

// countClass counts elements whose class attribute equals class.
func countClass(t *testing.T, doc string, class string) int {
	t.Helper()

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	n := 0
	walk(root, func(node *html.Node) {
		if node.Type != html.ElementNode {
			return
		}
		for _, a := range node.Attr {
			if a.Key == "class" && a.Val == class {
				n++
			}
		}
	})
	return n
}

func sampleView() MenuView {
	return MenuView{
		Lang:     "pt-br",
		Title:    "Semana 1",
		Range:    " (05/11-11/11)",
		PageCSS:  "@page { size: A4 portrait; margin: 20mm; }",
		StyleCSS: ".day-card { color: #111; }",
		Days: []DayView{
			{Label: "Segunda", Meals: []MealView{
				{Name: "Café", Items: []string{"Pão", "Café"}, Kcal: "350", Macros: "P 30g · C 45g"},
				{Name: "Almoço", Items: []string{"Arroz"}, Note: &Rich{Text: "sem sal"}},
			}},
			{Label: "Terça", Meals: []MealView{{Name: "Jantar"}}},
		},
		Shopping: []ShoppingGroupView{
			{Category: "Hortifruti", Items: []ShoppingItemView{{Name: "Banana", Quantity: "6 un"}, {Name: "Alface"}}},
		},
		Assumptions: []Rich{{Text: "2000 kcal/dia"}},
		Labels:      Labels{Shopping: "Lista de compras", Assumptions: "Hipóteses"},
	}
}

// ---------------------------------------------------------------------------
// TestMenuRenderer_Render
// ---------------------------------------------------------------------------

func TestMenuRenderer_Render(t *testing.T) {
	t.Parallel()

	got, err := newRenderer(t).Render(context.Background(), sampleView())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if n := countClass(t, got, "day-card"); n != 2 {
		t.Errorf("day cards = %d, want 2", n)
	}
	if n := countClass(t, got, "meal"); n != 3 {
		t.Errorf("meals = %d, want 3", n)
	}
	if n := countClass(t, got, "shopping-card"); n != 1 {
		t.Errorf("shopping cards = %d, want 1", n)
	}

	for _, want := range []string{
		`<html lang="pt-br">`,
		"<title>Semana 1</title>",
		"(05/11-11/11)",
		"350 kcal",
		"P 30g · C 45g",
		"sem sal",
		"Banana - 6 un",
		"<li>Alface</li>",
		"Lista de compras",
		"Hipóteses",
		"@page { size: A4 portrait; margin: 20mm; }",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output should contain %q", want)
		}
	}
	if c := strings.Count(got, `data-break-before="true"`); c != 2 {
		t.Errorf("break markers = %d, want 2", c)
	}
}

func TestMenuRenderer_Render_OmitsEmptySections(t *testing.T) {
	t.Parallel()

	view := MenuView{Lang: "pt-br", Title: "Vazio"}

	got, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, absent := range []string{"shopping-section", "assumptions", `class="range"`, `class="day-card"`} {
		if strings.Contains(got, absent) {
			t.Errorf("output should not contain %q", absent)
		}
	}
}

func TestMenuRenderer_Render_EscapesUserText(t *testing.T) {
	t.Parallel()

	view := sampleView()
	view.Title = `<script>alert("x")</script>`
	view.Days[0].Meals[0].Items = []string{`Tom & Jerry's <b>`}
	view.Assumptions = []Rich{{Text: "<img src=x onerror=1>"}}

	got, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, raw := range []string{"<script>", "<b>", "<img"} {
		if strings.Contains(got, raw) {
			t.Errorf("output contains unescaped %q", raw)
		}
	}
	for _, escaped := range []string{"&lt;script&gt;", "Tom &amp; Jerry&#39;s &lt;b&gt;"} {
		if !strings.Contains(got, escaped) {
			t.Errorf("output should contain %q", escaped)
		}
	}
}

func TestMenuRenderer_Render_TrustedNoteHTML(t *testing.T) {
	t.Parallel()

	view := sampleView()
	view.Days[0].Meals[1].Note = &Rich{Text: "**x**", HTML: "<p><strong>x</strong></p>"}

	got, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "<strong>x</strong>") {
		t.Error("pre-rendered note HTML should be emitted as is")
	}
}

func TestMenuRenderer_Render_StyleCannotCloseElement(t *testing.T) {
	t.Parallel()

	view := sampleView()
	view.StyleCSS = "body{}</style><script>evil()</script>"

	got, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "</style><script>") {
		t.Error("stylesheet content escaped its element")
	}
	if !strings.Contains(got, `<\/style>`) {
		t.Error("closing sequence should be escaped")
	}
}

func TestMenuRenderer_Render_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRenderer(t).Render(ctx, sampleView())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestNewMenuRenderer_InvalidTemplate(t *testing.T) {
	t.Parallel()

	if _, err := NewMenuRenderer("{{.Title"); err == nil {
		t.Error("expected parse error")
	}
}

func TestMenuRenderer_Render_ExecError(t *testing.T) {
	t.Parallel()

	r, err := NewMenuRenderer(`{{template "missing"}}`)
	if err != nil {
		t.Fatalf("NewMenuRenderer() error = %v", err)
	}
	_, err = r.Render(context.Background(), MenuView{})
	if !errors.Is(err, ErrMenuRender) {
		t.Errorf("Render() error = %v, want ErrMenuRender", err)
	}
}

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"body { color: red; }", "body { color: red; }"},
		{"</style>", `<\/style>`},
		{"</a></B>", `<\/a><\/B>`},
	}

	for _, tt := range tests {
		if got := sanitizeCSS(tt.input); got != tt.want {
			t.Errorf("sanitizeCSS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
