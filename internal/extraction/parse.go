package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalizer is one pass over a raw model response before JSON decoding.
// The external service usually honors "no markdown" instructions but not
// always, and its wrapping conventions may change, so the unwrap step is a
// chain of passes rather than one fixed pattern.
type Normalizer func(string) string

// StripMarkdownFences removes a leading ```json / ``` fence and a trailing
// ``` fence.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ExtractJSONObject slices the text down to the outermost JSON object,
// dropping any prose the model wrapped around it.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// DefaultNormalizers is the pass chain applied by ParseFields.
var DefaultNormalizers = []Normalizer{StripMarkdownFences, ExtractJSONObject}

// ParseFields parses a model response into Fields after running the
// normalization passes. A response with no decodable JSON object is a
// failure; the caller must not create a record from it.
func ParseFields(text string, passes ...Normalizer) (*Fields, error) {
	if len(passes) == 0 {
		passes = DefaultNormalizers
	}
	for _, pass := range passes {
		text = pass(text)
	}

	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	// Decode into a loose map first: the model sometimes returns numbers
	// where the schema asks for strings.
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	fields := &Fields{
		VendorName:  stringField(m, "vendor_name"),
		TotalAmount: moneyField(m, "total_amount"),
		Tax:         moneyField(m, "tax"),
		Date:        stringField(m, "date"),
		Category:    stringField(m, "category"),
	}

	if items, ok := m["items"].([]any); ok {
		for _, it := range items {
			if s, ok := it.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					fields.Items = append(fields.Items, s)
				}
			}
		}
	}

	return fields, nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// moneyField coerces numeric amounts to strings; the record keeps money
// values free-form because the source is untrusted.
func moneyField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return ""
	}
}
