package theme

import (
	"os"
	"strings"
)

// SymbolSet holds all UI symbols, allowing runtime switching between
// Unicode and ASCII fallback sets.
type SymbolSet struct {
	Success     string
	Error       string
	Spinner     string
	Bullet      string
	Ellipsis    string
	BarCell     string
	QuoteGutter string
	User        string
	Bot         string
}

var unicodeSymbols = SymbolSet{
	Success:     "✓", // ✓
	Error:       "✗", // ✗
	Spinner:     "⏳", // ⏳
	Bullet:      "•", // •
	Ellipsis:    "…", // …
	BarCell:     "█", // █
	QuoteGutter: "│", // │
	User:        "You",
	Bot:         "Coach",
}

var asciiSymbols = SymbolSet{
	Success:     "[OK]",
	Error:       "[ERR]",
	Spinner:     "[...]",
	Bullet:      "*",
	Ellipsis:    "...",
	BarCell:     "#",
	QuoteGutter: "|",
	User:        "You",
	Bot:         "Coach",
}

// Symbol variables, set by InitSymbols. Unicode by default with ASCII
// fallback on non-UTF8 terminals.
var (
	SymbolSuccess     = unicodeSymbols.Success
	SymbolError       = unicodeSymbols.Error
	SymbolSpinner     = unicodeSymbols.Spinner
	SymbolBullet      = unicodeSymbols.Bullet
	SymbolEllipsis    = unicodeSymbols.Ellipsis
	SymbolBarCell     = unicodeSymbols.BarCell
	SymbolQuoteGutter = unicodeSymbols.QuoteGutter
	SymbolUser        = unicodeSymbols.User
	SymbolBot         = unicodeSymbols.Bot
)

// DetectUnicodeSupport checks whether the terminal likely supports Unicode.
// Priority: ASKMYGARMIN_ASCII_SYMBOLS env (explicit override) > locale detection.
func DetectUnicodeSupport() bool {
	if v := os.Getenv("ASKMYGARMIN_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}

	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}

	// Most modern terminals support Unicode; default to true.
	return true
}

// InitSymbols sets the package-level Symbol* variables based on terminal
// capabilities. Called automatically by init(), but can be called again
// if the environment changes (e.g., in tests).
func InitSymbols() {
	set := unicodeSymbols
	if !DetectUnicodeSupport() {
		set = asciiSymbols
	}

	SymbolSuccess = set.Success
	SymbolError = set.Error
	SymbolSpinner = set.Spinner
	SymbolBullet = set.Bullet
	SymbolEllipsis = set.Ellipsis
	SymbolBarCell = set.BarCell
	SymbolQuoteGutter = set.QuoteGutter
	SymbolUser = set.User
	SymbolBot = set.Bot
}

func init() {
	InitSymbols()
}
