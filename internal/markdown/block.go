// Package markdown segments accumulated assistant text into typed blocks and
// styled inline spans. Both passes are pure functions with no parse state, so
// the caller can re-run them from scratch on every stream increment and get
// identical output for identical input.
package markdown

// Block is one structurally distinct unit of parsed content.
type Block interface {
	block()
}

// Heading is an ATX heading, levels 1 through 3.
type Heading struct {
	Level int
	Text  string
}

// Paragraph is a run of plain lines with original line breaks preserved.
type Paragraph struct {
	Lines []string
}

// Rule is a horizontal rule.
type Rule struct{}

// CodeBlock is a fenced code region. Content is preserved verbatim,
// embedded blank lines included. Language may be empty.
type CodeBlock struct {
	Language string
	Content  string
}

// Table is a GFM-style pipe table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// List is an ordered or unordered list. Item markers and ordinal numbers are
// stripped; only the item text survives.
type List struct {
	Ordered bool
	Items   []string
}

// Blockquote is a run of "> "-prefixed lines with the prefix stripped.
type Blockquote struct {
	Lines []string
}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (Rule) block()       {}
func (CodeBlock) block()  {}
func (Table) block()      {}
func (List) block()       {}
func (Blockquote) block() {}
