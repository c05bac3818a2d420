package sanitization

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const malformedPreviewBytes = 256

// SanitizeJSON renders a JSON payload for a log field with secrets masked by key, at any depth.
// Numbers keep their original text. Input that does not parse is reported with a redacted,
// truncated preview instead.
func SanitizeJSON(payload []byte) string {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return emptyMaskedValue
	}

	doc, err := decodeJSON(payload)
	if err != nil {
		return fmt.Sprintf("(malformed JSON: %v) %s", err, preview(payload))
	}
	out, err := json.Marshal(scrubJSON("", doc))
	if err != nil {
		return fmt.Sprintf("(unencodable JSON: %v)", err)
	}
	return string(out)
}

func decodeJSON(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	return doc, nil
}

// scrubJSON masks v according to the key it is stored under. Array elements inherit the key of
// their array.
func scrubJSON(key string, v any) any {
	switch typed := v.(type) {
	case map[string]any, []any:
		if masked, ok := SanitizeFieldValue(key, typed).(string); ok {
			return masked
		}
	case json.Number:
		if masked, ok := SanitizeFieldValue(key, typed.String()).(string); ok && masked != typed.String() {
			return masked
		}
		return typed
	default:
		return SanitizeFieldValue(key, typed)
	}

	if obj, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(obj))
		for k, child := range obj {
			out[k] = scrubJSON(k, child)
		}
		return out
	}
	arr := v.([]any)
	out := make([]any, len(arr))
	for i, child := range arr {
		out[i] = scrubJSON(key, child)
	}
	return out
}

func preview(payload []byte) string {
	s := SanitizeLogString(string(payload))
	if len(s) <= malformedPreviewBytes {
		return s
	}
	return strings.ToValidUTF8(s[:malformedPreviewBytes], "") + "..."
}
