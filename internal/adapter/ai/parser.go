// Package ai parses and shape-checks the JSON embedded in free-form model
// completions.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careerpilot/insights/internal/domain"
)

// Parser implements domain.OutputParser. It strips markdown fences, extracts
// the first balanced JSON object or array, and checks required top-level keys
// for the kind. Deep semantic checks (such as percentile ordering) are
// intentionally not performed here.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser { return &Parser{} }

// Parse returns the validated JSON payload for the kind, or
// domain.ErrMalformedOutput / domain.ErrSchemaInvalid.
func (p *Parser) Parse(kind domain.Kind, raw string) ([]byte, error) {
	doc, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object or array in model output", domain.ErrMalformedOutput)
	}
	var probe any
	if err := json.Unmarshal([]byte(doc), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if missing, err := validateShape(kind, []byte(doc)); err != nil {
		return nil, err
	} else if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing or invalid keys: %s", domain.ErrSchemaInvalid, strings.Join(missing, ", "))
	}
	return []byte(doc), nil
}

// ExtractJSON locates the first balanced JSON object or array embedded in
// free-form text, after stripping markdown code fences. The second return is
// false when no candidate is found.
func ExtractJSON(raw string) (string, bool) {
	s := stripFences(raw)
	start := -1
	var open, closeByte byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			closeByte = '}'
			if open == '[' {
				closeByte = ']'
			}
			break
		}
	}
	if start == -1 {
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
		case open:
			depth++
		case closeByte:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
