// Package render maps parsed markdown blocks to styled terminal output.
// Rendering is a pure function of the block list and width, so the TUI can
// re-render the same text any number of times without visible drift.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"askmygarmin/internal/markdown"
	"askmygarmin/internal/tui/theme"
)

// Renderer renders blocks at a fixed content width.
type Renderer struct {
	width int
}

// New creates a renderer for the given content width.
func New(width int) *Renderer {
	if width < 20 {
		width = 20
	}
	if width > theme.MaxContentWidth {
		width = theme.MaxContentWidth
	}
	return &Renderer{width: width}
}

// Text parses raw message text and renders it in one step.
func (r *Renderer) Text(text string) string {
	return r.Blocks(markdown.Parse(text))
}

// Blocks renders a block list. An empty list renders a muted placeholder
// glyph so a just-started stream shows something instead of a blank row.
func (r *Renderer) Blocks(blocks []markdown.Block) string {
	if len(blocks) == 0 {
		return theme.TextMuted.Render(theme.SymbolEllipsis)
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, r.Block(b))
	}
	return strings.Join(parts, "\n\n")
}

// Block renders a single block.
func (r *Renderer) Block(b markdown.Block) string {
	switch b := b.(type) {
	case markdown.Heading:
		return r.heading(b)
	case markdown.Paragraph:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = r.Inline(l)
		}
		return strings.Join(lines, "\n")
	case markdown.Rule:
		return theme.RuleLine.Render(strings.Repeat("─", r.width))
	case markdown.Blockquote:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = theme.Quote.Render(theme.SymbolQuoteGutter+" ") + r.Inline(l)
		}
		return strings.Join(lines, "\n")
	case markdown.List:
		return r.list(b)
	case markdown.Table:
		return r.table(b.Headers, b.Rows)
	case markdown.CodeBlock:
		if b.Language == "chart" {
			return r.chartBlock(b)
		}
		return r.code(b.Content)
	default:
		return ""
	}
}

// Inline styles one line of text span by span.
func (r *Renderer) Inline(line string) string {
	var sb strings.Builder
	for _, span := range markdown.Spans(line) {
		switch span.Kind {
		case markdown.SpanBold:
			sb.WriteString(theme.Bold.Render(span.Text))
		case markdown.SpanItalic:
			sb.WriteString(lipgloss.NewStyle().Italic(true).Render(span.Text))
		case markdown.SpanCode:
			sb.WriteString(theme.InlineCode.Render(span.Text))
		case markdown.SpanLink:
			sb.WriteString(theme.LinkText.Render(span.Text))
			sb.WriteString(theme.LinkURL.Render(" (" + span.URL + ")"))
		default:
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

func (r *Renderer) heading(h markdown.Heading) string {
	switch h.Level {
	case 1:
		return theme.Heading1.Render(h.Text)
	case 2:
		return theme.Heading2.Render(h.Text)
	default:
		return theme.Heading3.Render(h.Text)
	}
}

func (r *Renderer) list(l markdown.List) string {
	lines := make([]string, len(l.Items))
	for i, item := range l.Items {
		marker := theme.TextInfo.Render(theme.SymbolBullet)
		if l.Ordered {
			marker = theme.TextInfo.Render(strconv.Itoa(i+1) + ".")
		}
		lines[i] = "  " + marker + " " + r.Inline(item)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

// code renders fenced content as plain preformatted text. The language tag is
// ignored for styling purposes.
func (r *Renderer) code(content string) string {
	return theme.CodeBlock.Render(content)
}
