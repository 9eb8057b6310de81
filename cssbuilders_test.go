package menupdf

import (
	"strings"
	"testing"
)

func TestBuildPageCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page PageSettings
		want string
	}{
		{
			name: "default A4 portrait",
			page: DefaultPageSettings(),
			want: "@page { size: A4 portrait; margin: 20mm; }",
		},
		{
			name: "letter landscape",
			page: PageSettings{Size: "Letter", Orientation: "LANDSCAPE", Margin: 12.5},
			want: "@page { size: letter landscape; margin: 12.5mm; }",
		},
		{
			name: "legal",
			page: PageSettings{Size: PageSizeLegal, Orientation: OrientationPortrait, Margin: 40},
			want: "@page { size: legal portrait; margin: 40mm; }",
		},
		{
			name: "zero value uses defaults",
			page: PageSettings{},
			want: "@page { size: A4 portrait; margin: 20mm; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := buildPageCSS(tt.page); got != tt.want {
				t.Errorf("buildPageCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildBreakCSS(t *testing.T) {
	t.Parallel()

	got := buildBreakCSS()

	for _, want := range []string{
		"break-after: avoid",
		"orphans: 2",
		"widows: 2",
		`[data-break-before="true"]`,
		"page-break-before: always",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("buildBreakCSS() should contain %q", want)
		}
	}
}
