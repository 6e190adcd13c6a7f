package tui

import (
	"strings"
	"unicode"
)

// slug turns a route name into a file name base, e.g. "Col du Galibier!"
// becomes "col-du-galibier"
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "route"
	}
	return s
}
