package markdown

import (
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	ruleRe      = regexp.MustCompile(`^\s*(-{3,}|\*{3,}|_{3,})\s*$`)
	ulistRe     = regexp.MustCompile(`^[-*+] (.*)$`)
	olistRe     = regexp.MustCompile(`^\d+\. (.*)$`)
	separatorRe = regexp.MustCompile(`^\s*\|?[\s|:-]+\|?\s*$`)
)

// Parse segments text into an ordered list of typed blocks. It is a single
// left-to-right pass over lines with no backtracking and never fails:
// malformed constructs degrade (an unterminated fence consumes the remainder
// of the text as code content, a lone pipe row still yields a table).
// Blank lines terminate the current block and never produce one of their own.
func Parse(text string) []Block {
	if text == "" {
		return []Block{}
	}

	lines := strings.Split(text, "\n")
	blocks := []Block{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case strings.TrimSpace(line) == "":
			// Block separator; skipped.

		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			blocks = append(blocks, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})

		case ruleRe.MatchString(line):
			blocks = append(blocks, Rule{})

		case strings.HasPrefix(line, "```"):
			var block CodeBlock
			block, i = parseFence(lines, i)
			blocks = append(blocks, block)

		case strings.HasPrefix(line, ">"):
			var quoted []string
			for ; i < len(lines) && strings.HasPrefix(lines[i], ">"); i++ {
				quoted = append(quoted, stripQuotePrefix(lines[i]))
			}
			i--
			blocks = append(blocks, Blockquote{Lines: quoted})

		case strings.HasPrefix(line, "|"):
			var table Table
			table, i = parseTable(lines, i)
			blocks = append(blocks, table)

		case ulistRe.MatchString(line):
			var items []string
			for ; i < len(lines) && ulistRe.MatchString(lines[i]); i++ {
				items = append(items, ulistRe.FindStringSubmatch(lines[i])[1])
			}
			i--
			blocks = append(blocks, List{Ordered: false, Items: items})

		case olistRe.MatchString(line):
			var items []string
			for ; i < len(lines) && olistRe.MatchString(lines[i]); i++ {
				items = append(items, olistRe.FindStringSubmatch(lines[i])[1])
			}
			i--
			blocks = append(blocks, List{Ordered: true, Items: items})

		default:
			var para []string
			for ; i < len(lines) && isParagraphLine(lines[i]); i++ {
				para = append(para, lines[i])
			}
			i--
			blocks = append(blocks, Paragraph{Lines: para})
		}
	}

	return blocks
}

// parseFence consumes a fenced code block starting at lines[start]. Content is
// kept verbatim. Returns the block and the index of the last consumed line.
func parseFence(lines []string, start int) (CodeBlock, int) {
	lang := strings.TrimSpace(strings.TrimPrefix(lines[start], "```"))

	var content []string
	i := start + 1
	for ; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			return CodeBlock{Language: lang, Content: strings.Join(content, "\n")}, i
		}
		content = append(content, lines[i])
	}
	// Unterminated fence: the rest of the text is code content.
	return CodeBlock{Language: lang, Content: strings.Join(content, "\n")}, i - 1
}

// parseTable consumes a run of pipe-led lines starting at lines[start].
// A separator row after the header is consumed and discarded; when it is
// missing, subsequent pipe-led lines are still parsed as data rows.
func parseTable(lines []string, start int) (Table, int) {
	table := Table{Headers: splitRow(lines[start])}

	i := start + 1
	if i < len(lines) && strings.HasPrefix(lines[i], "|") && separatorRe.MatchString(lines[i]) {
		i++
	}
	for ; i < len(lines) && strings.HasPrefix(lines[i], "|"); i++ {
		table.Rows = append(table.Rows, splitRow(lines[i]))
	}
	return table, i - 1
}

// splitRow splits one pipe row into trimmed cells.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func stripQuotePrefix(line string) string {
	line = strings.TrimPrefix(line, ">")
	return strings.TrimPrefix(line, " ")
}

// isParagraphLine reports whether line belongs to a paragraph run: non-blank
// and not claimed by any other block marker.
func isParagraphLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if headingRe.MatchString(line) || ruleRe.MatchString(line) ||
		ulistRe.MatchString(line) || olistRe.MatchString(line) {
		return false
	}
	if strings.HasPrefix(line, "```") || strings.HasPrefix(line, ">") || strings.HasPrefix(line, "|") {
		return false
	}
	return true
}
