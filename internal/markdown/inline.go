package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SpanKind identifies the styling of one inline span.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
	SpanItalic
	SpanCode
	SpanLink
)

// Span is one styled run within a line. URL is set only for SpanLink.
type Span struct {
	Kind SpanKind
	Text string
	URL  string
}

var linkRe = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)`)

// Spans splits one line of raw text into styled spans. Markers are matched
// left to right, first match wins; nesting and overlap are not supported.
// Anything that does not form a complete marker pair passes through as text.
func Spans(line string) []Span {
	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Kind: SpanText, Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(line); {
		rest := line[i:]

		if text, n, ok := matchDouble(rest, "**"); ok {
			flush()
			spans = append(spans, Span{Kind: SpanBold, Text: text})
			i += n
			continue
		}
		if text, n, ok := matchDouble(rest, "__"); ok {
			flush()
			spans = append(spans, Span{Kind: SpanBold, Text: text})
			i += n
			continue
		}
		if rest[0] == '`' {
			if end := strings.Index(rest[1:], "`"); end > 0 {
				flush()
				spans = append(spans, Span{Kind: SpanCode, Text: rest[1 : 1+end]})
				i += end + 2
				continue
			}
		}
		if rest[0] == '[' {
			if m := linkRe.FindStringSubmatch(rest); m != nil {
				flush()
				spans = append(spans, Span{Kind: SpanLink, Text: m[1], URL: m[2]})
				i += len(m[0])
				continue
			}
		}
		if text, n, ok := matchSingle(rest, rest[0]); ok {
			flush()
			spans = append(spans, Span{Kind: SpanItalic, Text: text})
			i += n
			continue
		}

		_, size := utf8.DecodeRuneInString(rest)
		plain.WriteString(rest[:size])
		i += size
	}

	flush()
	return spans
}

// matchDouble matches a two-character delimiter pair (** or __) with
// non-empty content. Returns the content and total consumed length.
func matchDouble(s, delim string) (string, int, bool) {
	if !strings.HasPrefix(s, delim) {
		return "", 0, false
	}
	end := strings.Index(s[2:], delim)
	if end <= 0 {
		return "", 0, false
	}
	return s[2 : 2+end], end + 4, true
}

// matchSingle matches *italic* or _italic_. A four-character minimum (two or
// more content characters) keeps empty and near-empty markers unmatched.
func matchSingle(s string, delim byte) (string, int, bool) {
	if delim != '*' && delim != '_' {
		return "", 0, false
	}
	end := strings.IndexByte(s[1:], delim)
	if end < 2 {
		return "", 0, false
	}
	return s[1 : 1+end], end + 2, true
}
