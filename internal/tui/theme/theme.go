// Package theme provides the visual design system for the TUI.
// All styles use adaptive colors that work on both light and dark terminals.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection — when set, all color output is suppressed.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive color palette ---

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	ColorBorder = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBgAlt  = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim  = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
)

// ChartPalette is the dataset color cycle for bar charts and legends.
var ChartPalette = []lipgloss.AdaptiveColor{
	ColorInfo,
	ColorAccent,
	ColorSuccess,
	ColorWarning,
	ColorError,
}

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	TextError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Message role styles ---

var (
	UserLabel   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	BotLabel    = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	SystemLabel = lipgloss.NewStyle().Foreground(ColorMuted).Bold(true)
	ErrorLabel  = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	Timestamp   = lipgloss.NewStyle().Foreground(ColorFgDim).Faint(true)
	Annotation  = lipgloss.NewStyle().Foreground(ColorSuccess).Faint(true)
)

// --- Markdown block styles ---

var (
	Heading1 = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Underline(true)
	Heading2 = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	Heading3 = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)

	InlineCode = lipgloss.NewStyle().Foreground(ColorWarning).Background(ColorBgAlt)
	CodeBlock  = lipgloss.NewStyle().Foreground(ColorFgDim).Background(ColorBgAlt).Padding(0, 1)
	LinkText   = lipgloss.NewStyle().Foreground(ColorInfo).Underline(true)
	LinkURL    = lipgloss.NewStyle().Foreground(ColorFgDim).Faint(true)
	Quote      = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	RuleLine   = lipgloss.NewStyle().Foreground(ColorBorder)
)

// --- Status bar and input ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	InputPlaceholder = lipgloss.NewStyle().
				Foreground(ColorFgDim)
)

// MaxContentWidth is the recommended max width for readable text content.
const MaxContentWidth = 100
