package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON object from free-form model output.
//
// Strategies are tried in order and the first success wins:
//  1. the whole (trimmed) text is a JSON object;
//  2. the interior of a fenced ``` block (optionally language-tagged) is a JSON object;
//  3. a balanced {...} region of the raw text is a JSON object.
//
// Strings inside candidate regions are scanned with escape awareness, so braces
// in string values do not unbalance the scan. Truncated payloads fail with
// *ExtractionError.
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ExtractionError{Message: "empty response", Prefix: ""}
	}

	if isJSONObject(trimmed) {
		return json.RawMessage(trimmed), nil
	}

	for _, block := range fencedBlocks(text) {
		if isJSONObject(block) {
			return json.RawMessage(block), nil
		}
	}

	if region, ok := firstBalancedObject(text); ok {
		return json.RawMessage(region), nil
	}

	return nil, &ExtractionError{
		Message: "no JSON object found in response",
		Prefix:  truncatePrefix(text),
	}
}

func isJSONObject(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return false
	}
	return json.Valid([]byte(s))
}

// fencedBlocks returns the trimmed interiors of every closed ``` block in order.
// A first line without spaces or braces is treated as a language tag.
func fencedBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return blocks
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			return blocks
		}
		body := rest[:end]
		rest = rest[end+3:]

		if nl := strings.Index(body, "\n"); nl >= 0 {
			tag := strings.TrimSpace(body[:nl])
			if tag != "" && !strings.ContainsAny(tag, " {[") {
				body = body[nl+1:]
			}
		}
		blocks = append(blocks, strings.TrimSpace(body))
	}
}

// firstBalancedObject scans for the first '{' whose matching '}' closes a
// valid JSON object. Candidates that fail to parse are skipped and the scan
// resumes at the next opening brace.
func firstBalancedObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(text string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
		c := text[i]
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
				return i, true
			}
		}
	}
	return 0, false
}
