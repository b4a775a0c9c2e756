package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls a structured payload out of free-form model output.
// It tries, in order: a strict parse of the whole response, then a parse
// of the first balanced {...} region found by a string-aware scanner, then
// the same region with raw control characters escaped. Callers supply
// their own fallback when all three fail.
func ExtractJSON(raw string, v interface{}) error {
	text := stripFences(raw)
	if text == "" {
		return fmt.Errorf("empty response")
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	region, ok := scanObject(text)
	if !ok {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(region), v); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(escapeControls(region)), v); err == nil {
		return nil
	}
	return fmt.Errorf("response contained no parseable JSON object")
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// scanObject finds the first balanced top-level JSON object in s. Braces
// inside string literals are ignored; backslash escapes are honored.
func scanObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// escapeControls rewrites raw newlines, carriage returns, and tabs found
// inside string literals as JSON escapes and drops other control characters
// there. Models sometimes emit literal newlines inside string values.
// Control characters between tokens are legal JSON whitespace (or junk the
// parser will reject anyway) and pass through untouched.
func escapeControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = false
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			// drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
