package render

import (
	"strings"
	"testing"

	"askmygarmin/internal/markdown"
	"askmygarmin/internal/tui/theme"
)

func TestBlocksEmptyRendersPlaceholder(t *testing.T) {
	r := New(80)
	out := r.Blocks([]markdown.Block{})
	if !strings.Contains(out, theme.SymbolEllipsis) {
		t.Errorf("empty render = %q, want placeholder glyph", out)
	}
}

func TestTextRendersHeadingAndParagraph(t *testing.T) {
	r := New(80)
	out := r.Text("# Sleep\n\nYou slept well.")
	if !strings.Contains(out, "Sleep") {
		t.Errorf("output missing heading text: %q", out)
	}
	if !strings.Contains(out, "You slept well.") {
		t.Errorf("output missing paragraph: %q", out)
	}
}

func TestTextRendersTable(t *testing.T) {
	r := New(80)
	out := r.Text("| Day | Hours |\n|---|---|\n| Mon | 7 |")
	for _, want := range []string{"Day", "Hours", "Mon", "7"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTextRendersList(t *testing.T) {
	r := New(80)
	out := r.Text("1. warm up\n2. intervals")
	if !strings.Contains(out, "1.") || !strings.Contains(out, "intervals") {
		t.Errorf("list output = %q", out)
	}
}

func TestLinkShowsURL(t *testing.T) {
	r := New(80)
	out := r.Inline("see [Garmin](https://garmin.com)")
	if !strings.Contains(out, "Garmin") || !strings.Contains(out, "https://garmin.com") {
		t.Errorf("link output = %q", out)
	}
}

func TestChartBarRendersLabelsAndValues(t *testing.T) {
	r := New(80)
	out := r.Text("```chart\n{\"type\":\"bar\",\"labels\":[\"A\"],\"datasets\":[{\"label\":\"x\",\"data\":[10]}]}\n```")
	if !strings.Contains(out, "A") || !strings.Contains(out, "10") {
		t.Errorf("bar chart output = %q", out)
	}
	if !strings.Contains(out, theme.SymbolBarCell) {
		t.Errorf("bar chart output missing bar cells: %q", out)
	}
}

// A tiny positive value still gets a visible bar.
func TestChartBarMinimumWidth(t *testing.T) {
	if got := barCells(0.001, 1000, 40); got != 1 {
		t.Errorf("barCells(tiny) = %d, want 1", got)
	}
	if got := barCells(0, 1000, 40); got != 0 {
		t.Errorf("barCells(0) = %d, want 0", got)
	}
	if got := barCells(1000, 1000, 40); got != 40 {
		t.Errorf("barCells(max) = %d, want 40", got)
	}
}

func TestChartLegendOnlyForMultipleDatasets(t *testing.T) {
	r := New(80)
	single := r.Text("```chart\n{\"type\":\"bar\",\"labels\":[\"A\"],\"datasets\":[{\"label\":\"only\",\"data\":[1]}]}\n```")
	if strings.Count(single, "only") > 1 {
		t.Errorf("single dataset rendered a legend:\n%s", single)
	}

	double := r.Text("```chart\n{\"type\":\"bar\",\"labels\":[\"A\"],\"datasets\":[{\"label\":\"one\",\"data\":[1]},{\"label\":\"two\",\"data\":[2]}]}\n```")
	if !strings.Contains(double, "one") || !strings.Contains(double, "two") {
		t.Errorf("legend missing dataset names:\n%s", double)
	}
}

func TestChartLineRendersAsTable(t *testing.T) {
	r := New(80)
	out := r.Text("```chart\n{\"type\":\"line\",\"labels\":[\"W1\",\"W2\"],\"datasets\":[{\"label\":\"km\",\"data\":[30,35]}]}\n```")
	for _, want := range []string{"W1", "W2", "30", "35", "km"} {
		if !strings.Contains(out, want) {
			t.Errorf("line chart table missing %q:\n%s", want, out)
		}
	}
}

func TestChartInvalidFallsBackToRawText(t *testing.T) {
	r := New(80)
	raw := `{"type":"pie","labels":[]}`
	out := r.Text("```chart\n" + raw + "\n```")
	if !strings.Contains(out, `"pie"`) {
		t.Errorf("fallback output should contain raw content: %q", out)
	}
	if strings.Contains(out, theme.SymbolBarCell) {
		t.Errorf("invalid chart must not render bars: %q", out)
	}
}

func TestNonChartFenceIgnoresLanguage(t *testing.T) {
	r := New(80)
	out := r.Text("```python\nprint('hi')\n```")
	if !strings.Contains(out, "print('hi')") {
		t.Errorf("code output = %q", out)
	}
}

func TestRenderIdempotent(t *testing.T) {
	r := New(80)
	text := "# Recap\n\nYou ran **12 km**.\n\n- hydrate\n- sleep"
	if r.Text(text) != r.Text(text) {
		t.Error("re-rendering the same text drifted")
	}
}
