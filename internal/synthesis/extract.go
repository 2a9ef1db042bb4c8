package synthesis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Kind is the top-level JSON shape a caller expects.
type Kind int

const (
	KindAny Kind = iota
	KindObject
	KindArray
)

var errNoJSON = errors.New("no JSON value found in response")

// ExtractJSON pulls the first well-formed JSON value of the wanted kind out of
// model output. Markdown fences and surrounding commentary are ignored. When no
// well-formed candidate exists, the most likely candidate is run through
// jsonrepair before giving up.
func ExtractJSON(text string, kind Kind) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errNoJSON
	}

	var candidates []string
	if fenced, ok := fencedBlock(text); ok {
		candidates = append(candidates, fenced)
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		if raw, ok := firstBalanced(c, kind); ok {
			return raw, nil
		}
	}

	for _, c := range candidates {
		start := openingIndex(c, kind)
		if start < 0 {
			continue
		}
		repaired, err := jsonrepair.JSONRepair(c[start:])
		if err != nil {
			continue
		}
		if json.Valid([]byte(repaired)) && matchesKind(repaired, kind) {
			return []byte(repaired), nil
		}
	}
	return nil, errNoJSON
}

// fencedBlock returns the body of the first ``` fence, dropping a language tag.
func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	body := text[open+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// firstBalanced scans for each opening bracket in turn and returns the first
// balanced span that is valid JSON.
func firstBalanced(text string, kind Kind) ([]byte, bool) {
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if !opens(ch, kind) {
			continue
		}
		end := matchClose(text, i)
		if end < 0 {
			continue
		}
		span := text[i : end+1]
		if json.Valid([]byte(span)) {
			return []byte(span), true
		}
	}
	return nil, false
}

// matchClose finds the bracket closing text[start], honouring JSON strings.
func matchClose(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func opens(ch byte, kind Kind) bool {
	switch kind {
	case KindObject:
		return ch == '{'
	case KindArray:
		return ch == '['
	default:
		return ch == '{' || ch == '['
	}
}

func openingIndex(text string, kind Kind) int {
	for i := 0; i < len(text); i++ {
		if opens(text[i], kind) {
			return i
		}
	}
	return -1
}

func matchesKind(s string, kind Kind) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return opens(s[0], kind)
}
