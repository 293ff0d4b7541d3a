package viewgen

import (
	"strings"
	"unicode"
)

// Label turns a field or model identifier into a display label.
//
//	Label("publishedAt") // "Published At"
//	Label("XMLParser")   // "XML Parser"
//	Label("author_id")   // "Author Id"
func Label(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	runes := []rune(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	wordStart := true

	for i, r := range runes {
		if r == ' ' {
			if !wordStart {
				b.WriteRune(' ')
			}
			wordStart = true
			continue
		}

		if !wordStart && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			acronymEnd := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteRune(' ')
			}
		}

		if wordStart {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		wordStart = false
	}

	return strings.TrimRight(b.String(), " ")
}
