// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Percent formats a fraction as a whole percentage, e.g. 0.9 as "90%".
func Percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// Duration formats d as "1m 5s", "5s", or "120ms" below a second.
func Duration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Quote wraps s in double quotes, or returns "-" when s is empty.
func Quote(s string) string {
	if s == "" {
		return "-"
	}
	return `"` + s + `"`
}
