package marketdata

import "strings"

// NormalizeSymbol trims whitespace and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
