package util

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

/*
Utility functions.
*/

////////////////////////////////////////////////////////////////////////////////

// Okeys returns the keys of a map in sorted order.
func Okeys[T cmp.Ordered, K any](m map[T]K) []T {
	keys := make([]T, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SizeOf returns a human-readable representation of a number of bytes using
// 1024-based units, with one decimal and the unit left-justified to three
// characters: "2.0 KiB", "0.0 B  ".
func SizeOf(n uint64) string {
	units := []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"}
	num := float64(n)
	for _, unit := range units {
		if num < 1024 {
			return fmt.Sprintf("%3.1f %-3s", num, unit+"B")
		}
		num /= 1024
	}
	return fmt.Sprintf("%3.1f %-3s", num, "YiB")
}

// Truncate shortens s to at most width runes, replacing the tail with "...".
// Widths below three yield a bare ellipsis.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	keep := max(width-3, 0)
	return string(runes[:keep]) + "..."
}

// Center places title, padded by a space on each side, in the middle of a
// line of width fill characters. An empty title returns the bare line. Titles
// wider than the line replace it entirely.
func Center(title string, fill rune, width int) string {
	line := []rune(strings.Repeat(string(fill), max(width, 0)))
	if title == "" {
		return string(line)
	}
	h := []rune(" " + title + " ")
	mid := len(line) / 2
	before := (len(h) + 1) / 2
	after := len(h) / 2
	left := max(mid-before, 0)
	right := min(mid+after, len(line))
	return string(line[:left]) + string(h) + string(line[right:])
}

// SanitizeName maps s onto a name safe for file names and object keys by
// replacing every character outside [A-Za-z0-9._-] with an underscore.
func SanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
