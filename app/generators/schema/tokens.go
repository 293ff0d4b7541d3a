package schema

import "strings"

// scanner state shared by the helpers below: quotes and bracket depth decide
// whether a delimiter is structural or part of a literal.
type depthTracker struct {
	quote rune
	depth int
}

// step consumes r and reports whether it sits at top level (outside quotes
// and brackets) before being consumed.
func (d *depthTracker) step(r rune) bool {
	top := d.quote == 0 && d.depth == 0
	switch {
	case d.quote != 0:
		if r == d.quote {
			d.quote = 0
		}
	case r == '"' || r == '\'':
		d.quote = r
	case r == '(' || r == '[' || r == '{':
		d.depth++
	case r == ')' || r == ']' || r == '}':
		if d.depth > 0 {
			d.depth--
		}
	}
	return top
}

// stripComment cuts a trailing `//` comment that is not inside a string.
func stripComment(line string) string {
	var d depthTracker
	for i, r := range line {
		if d.quote == 0 && r == '/' && strings.HasPrefix(line[i:], lineComment) {
			return line[:i]
		}
		d.step(r)
	}
	return line
}

// modifierArgs finds modifier at top level in text, outside quotes and
// brackets, and returns the text between its balanced parentheses. A
// modifier written without parentheses is found with empty args.
func modifierArgs(text, modifier string) (string, bool) {
	var d depthTracker
	for start, r := range text {
		if !d.step(r) || !strings.HasPrefix(text[start:], modifier) {
			continue
		}
		if start > 0 && !isSpace(text[start-1]) {
			continue
		}
		end := start + len(modifier)
		if end == len(text) || isSpace(text[end]) {
			return "", true
		}
		if text[end] != '(' {
			continue
		}
		if inner, ok := balanced(text[end:]); ok {
			return inner, true
		}
		// unterminated list: take what is there
		return strings.TrimSpace(text[end+1:]), true
	}
	return "", false
}

// hasModifier reports whether modifier appears at top level in text.
func hasModifier(text, modifier string) bool {
	_, ok := modifierArgs(text, modifier)
	return ok
}

// balanced expects s to start with '(' and returns the text up to the
// matching ')'.
func balanced(s string) (string, bool) {
	var d depthTracker
	for i, r := range s {
		d.step(r)
		if i > 0 && d.quote == 0 && d.depth == 0 {
			return s[1:i], true
		}
	}
	return "", false
}

// splitTopLevel splits s on commas that are outside quotes and brackets.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	var d depthTracker
	last := 0
	for i, r := range s {
		if d.step(r) && r == ',' {
			out = append(out, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
	}
	return append(out, strings.TrimSpace(s[last:]))
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }
