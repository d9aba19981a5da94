package workflow

import (
	"encoding/json"
	"fmt"
)

// Workflow responses are loosely shaped: the interesting value may sit at the
// top level, under a "body" wrapper, inside a single-item batch, or be
// JSON-encoded once more as a string. The functions here hunt for the value
// instead of assuming a schema.

// maxSearchDepth bounds the recursive traversal. JSON values are trees so the
// search terminates anyway, but pathological nesting is cut off here.
const maxSearchDepth = 32

// vectorKeys are tried in order before falling back to scanning every value.
var vectorKeys = []string{"vector", "embeddings", "data", "body"}

// FindVector searches v for a list of numbers and returns it, or nil if no
// vector is present anywhere in the structure. A top-level string gets one
// JSON decode pass first.
func FindVector(v any) []float64 {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
		v = decoded
	}
	return findVector(v, 0)
}

func findVector(v any, depth int) []float64 {
	if depth > maxSearchDepth {
		return nil
	}
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return nil
		}
		if isNumber(val[0]) {
			return toFloats(val)
		}
		// Single-item batch wrapping: [[...]]
		if _, ok := val[0].([]any); ok {
			return findVector(val[0], depth+1)
		}
		return nil
	case map[string]any:
		for _, key := range vectorKeys {
			if inner, ok := val[key]; ok {
				if found := findVector(inner, depth+1); found != nil {
					return found
				}
			}
		}
		for key, inner := range val {
			if isVectorKey(key) {
				continue
			}
			if found := findVector(inner, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindAnswer extracts an answer string from v. It never fails: when no known
// answer key is present it degrades to a string rendering of the value.
func FindAnswer(v any) string {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			// Plain text, not JSON. Take it verbatim.
			return s
		}
		v = decoded
	}
	m, ok := v.(map[string]any)
	if !ok {
		return renderString(v)
	}
	if body, ok := m["body"].(map[string]any); ok {
		if answer, ok := body["answer"].(string); ok && answer != "" {
			return answer
		}
	}
	if answer, ok := m["answer"].(string); ok && answer != "" {
		return answer
	}
	if response, ok := m["response"].(string); ok && response != "" {
		return response
	}
	return renderString(m)
}

func isVectorKey(key string) bool {
	for _, k := range vectorKeys {
		if key == k {
			return true
		}
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, json.Number:
		return true
	}
	return false
}

func toFloats(list []any) []float64 {
	out := make([]float64, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case float32:
			out = append(out, float64(n))
		case int:
			out = append(out, float64(n))
		case int64:
			out = append(out, float64(n))
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil
			}
			out = append(out, f)
		default:
			// Mixed content is not a vector.
			return nil
		}
	}
	return out
}

func renderString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
