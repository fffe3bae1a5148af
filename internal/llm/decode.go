package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The completion endpoint's body shape is not trusted: servers emit a
// single JSON document, newline-delimited JSON fragments (even for
// non-streaming calls), or plain text, and field names differ between
// versions. Decoding tries an ordered list of strategies; the first one
// that applies wins, and the raw body is the terminal fallback.

type decodeStrategy func(body string) (string, bool)

var decodeStrategies = []decodeStrategy{
	decodeWholeBody,
	decodeLineStream,
	decodeLastObject,
}

func decodeResponse(body []byte) string {
	s := string(body)
	for _, strategy := range decodeStrategies {
		if text, ok := strategy(s); ok {
			return text
		}
	}
	return s
}

// decodeWholeBody parses the entire body as one JSON value. A successful
// parse wins outright, even when the extracted text is empty.
func decodeWholeBody(body string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return "", false
	}
	return extractText(v), true
}

// decodeLineStream handles NDJSON streams: every line that parses as a
// JSON object contributes its recognized fields to the accumulator, in
// line order. Lines that do not look like JSON or fail to parse are
// skipped.
func decodeLineStream(body string) (string, bool) {
	var accum strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !looksLikeJSON(line) {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := extractFields(obj); ok {
			accum.WriteString(text)
		}
	}
	if accum.Len() == 0 {
		return "", false
	}
	return accum.String(), true
}

// decodeLastObject scans lines in reverse and extracts from the first
// one that parses as JSON, taking the final document of a stream whose
// fragments carried no recognizable text fields.
func decodeLastObject(body string) (string, bool) {
	lines := strings.Split(body, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !looksLikeJSON(line) {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			continue
		}
		return extractText(v), true
	}
	return "", false
}

func looksLikeJSON(line string) bool {
	return strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[")
}

// extractFields applies the known field shapes to a parsed object:
// a "response" string, a "text" string, or OpenAI-style
// choices[].content[] items. It reports false when none apply.
func extractFields(obj map[string]any) (string, bool) {
	if s, ok := obj["response"].(string); ok {
		return s, true
	}
	if s, ok := obj["text"].(string); ok {
		return s, true
	}
	choices, ok := obj["choices"].([]any)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, ch := range choices {
		chObj, ok := ch.(map[string]any)
		if !ok {
			continue
		}
		content, ok := chObj["content"].([]any)
		if !ok {
			continue
		}
		for _, item := range content {
			itemObj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := itemObj["type"].(string); t == "response.text" {
				s, _ := itemObj["text"].(string)
				b.WriteString(s)
				continue
			}
			if s, ok := itemObj["text"].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String(), true
}

// extractText resolves any parsed JSON value to a string, degrading to a
// lossy debug rendering for shapes the field rules do not recognize.
func extractText(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if text, ok := extractFields(obj); ok {
			return text
		}
	}
	return fmt.Sprintf("%v", v)
}
