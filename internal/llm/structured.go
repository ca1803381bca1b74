package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON extracts a JSON object of type T from raw LLM text output.
// It handles markdown code fences, leading/trailing text, and nested braces.
// If validator is non-nil, the extracted value is validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	jsonStr := extractBlock(stripCodeFences(raw), '{', '}')
	if jsonStr == "" {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	return decodeBlock(jsonStr, validator)
}

// ExtractJSONList extracts a JSON array of T from raw LLM text output. A bare
// array or an object wrapping one under any key is accepted. Elements that
// fail validation are dropped; an empty result is an error.
func ExtractJSONList[T any](raw string, validator SchemaValidator[T]) ([]T, error) {
	cleaned := stripCodeFences(raw)
	arrStart := strings.IndexByte(cleaned, '[')
	objStart := strings.IndexByte(cleaned, '{')

	var items []T
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		list, err := decodeBlock[[]T](extractBlock(cleaned, '[', ']'), nil)
		if err != nil {
			return nil, err
		}
		items = list
	case objStart >= 0:
		wrapper, err := ExtractJSON[map[string][]T](cleaned, nil)
		if err != nil {
			return nil, err
		}
		for _, v := range wrapper {
			items = append(items, v...)
		}
	default:
		return nil, fmt.Errorf("%w: no JSON array found in response", ErrInvalidOutput)
	}

	out := items[:0]
	for _, item := range items {
		if validator == nil || validator(item) == nil {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid items in response", ErrInvalidOutput)
	}
	return out, nil
}

func decodeBlock[T any](jsonStr string, validator SchemaValidator[T]) (T, error) {
	var zero T
	if jsonStr == "" {
		return zero, fmt.Errorf("%w: unbalanced JSON in response", ErrInvalidOutput)
	}
	jsonStr = stripJSONComments(jsonStr)
	jsonStr = normalizeLeadingDecimalNumbers(jsonStr)

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}

	return result, nil
}

// stripCodeFences removes markdown code fences (```json ... ``` or ``` ... ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	var result []string
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				inFence = false
				continue
			}
			inFence = true
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "```") {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// extractBlock finds the first balanced open ... close block in the text.
func extractBlock(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

// stripJSONComments removes C-style line comments (// ...) outside of JSON string
// values. LLMs sometimes emit comments in JSON output despite instructions not to.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		// Line comment: skip to end of line
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}

		// Block comment: skip to closing */
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// normalizeLeadingDecimalNumbers rewrites invalid JSON numeric literals such as
// ".8" or "-.3" into valid forms "0.8" and "-0.3" outside string values.
func normalizeLeadingDecimalNumbers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		// JSON does not allow ".5" or "-.5". Some models emit these forms.
		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}

		b.WriteByte(c)
	}

	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseBullets returns the text of every line that starts with "-", "•" or
// a "1." style number, markers stripped. Other lines are ignored.
func ParseBullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		var item string
		switch {
		case strings.HasPrefix(trimmed, "-"):
			item = trimmed[1:]
		case strings.HasPrefix(trimmed, "•"):
			item = strings.TrimPrefix(trimmed, "•")
		default:
			i := 0
			for i < len(trimmed) && isDigit(trimmed[i]) {
				i++
			}
			if i == 0 || i >= len(trimmed) || trimmed[i] != '.' {
				continue
			}
			item = trimmed[i+1:]
		}
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Section returns the text after "LABEL:" up to the next line that opens
// another "WORD:" section, trimmed. Empty when the label is absent.
func Section(text, label string) string {
	upper := strings.ToUpper(text)
	idx := strings.Index(upper, strings.ToUpper(label)+":")
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(label)+1:]
	var lines []string
	for i, line := range strings.Split(rest, "\n") {
		trimmed := strings.TrimSpace(line)
		if i > 0 && isSectionHeader(trimmed) {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isSectionHeader(line string) bool {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return false
	}
	head := line[:colon]
	return strings.ToUpper(head) == head && strings.IndexFunc(head, func(r rune) bool {
		return r != ' ' && (r < 'A' || r > 'Z')
	}) < 0
}
