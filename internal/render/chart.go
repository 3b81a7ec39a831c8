package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"askmygarmin/internal/chart"
	"askmygarmin/internal/markdown"
	"askmygarmin/internal/tui/theme"
)

// chartBlock interprets a fenced "chart" block. Anything that fails to parse
// or validate degrades to the plain preformatted rendering of the raw text.
func (r *Renderer) chartBlock(b markdown.CodeBlock) string {
	d, ok := chart.Parse(b.Content)
	if !ok {
		return r.code(b.Content)
	}

	var sb strings.Builder
	if d.Title != "" {
		sb.WriteString(theme.Heading3.Render(d.Title))
		sb.WriteString("\n")
	}

	switch d.Type {
	case "bar":
		sb.WriteString(r.barChart(d))
	default:
		// No live chart surface for line/doughnut; a label-by-dataset table
		// carries the same data.
		sb.WriteString(r.chartTable(d))
	}
	return sb.String()
}

// barChart renders one row per label with a proportional bar per dataset,
// scaled against the maximum value across all datasets. Non-zero values get
// at least one cell so tiny values stay visible.
func (r *Renderer) barChart(d *chart.Descriptor) string {
	max := d.MaxValue()

	labelWidth := 0
	for _, l := range d.Labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	barWidth := r.width - labelWidth - 12
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}

	var sb strings.Builder
	for i, label := range d.Labels {
		for j, ds := range d.Datasets {
			if i >= len(ds.Data) {
				continue
			}
			v := ds.Data[i]
			name := label
			if j > 0 {
				name = "" // label only on the first dataset row
			}
			sb.WriteString(padRight(name, labelWidth))
			sb.WriteString("  ")
			sb.WriteString(datasetStyle(j).Render(strings.Repeat(theme.SymbolBarCell, barCells(v, max, barWidth))))
			sb.WriteString(" " + theme.TextMuted.Render(formatValue(v)))
			sb.WriteString("\n")
		}
	}

	if len(d.Datasets) > 1 {
		sb.WriteString(r.legend(d))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// chartTable renders line/doughnut descriptors as a label-by-dataset table.
func (r *Renderer) chartTable(d *chart.Descriptor) string {
	headers := make([]string, 0, len(d.Datasets)+1)
	headers = append(headers, "")
	for i, ds := range d.Datasets {
		name := ds.Label
		if name == "" {
			name = "series " + strconv.Itoa(i+1)
		}
		headers = append(headers, name)
	}

	rows := make([][]string, 0, len(d.Labels))
	for i, label := range d.Labels {
		row := make([]string, 0, len(headers))
		row = append(row, label)
		for _, ds := range d.Datasets {
			if i < len(ds.Data) {
				row = append(row, formatValue(ds.Data[i]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return r.table(headers, rows)
}

func (r *Renderer) legend(d *chart.Descriptor) string {
	parts := make([]string, 0, len(d.Datasets))
	for i, ds := range d.Datasets {
		name := ds.Label
		if name == "" {
			name = "series " + strconv.Itoa(i+1)
		}
		parts = append(parts, datasetStyle(i).Render(theme.SymbolBarCell)+" "+name)
	}
	return strings.Join(parts, "   ") + "\n"
}

// barCells converts a value to a bar length in cells. Zero and negative
// values render no bar; any positive value renders at least one cell.
func barCells(v, max float64, width int) int {
	if v <= 0 || max <= 0 {
		return 0
	}
	cells := int(math.Round(v / max * float64(width)))
	if cells < 1 {
		cells = 1
	}
	return cells
}

func datasetStyle(i int) lipgloss.Style {
	color := theme.ChartPalette[i%len(theme.ChartPalette)]
	return lipgloss.NewStyle().Foreground(color)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
