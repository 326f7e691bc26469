package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ExtractObject returns the greedy outer-brace span of text: from the first
// '{' to the last '}' inclusive. ok is false when either brace is missing or
// the last '}' precedes the first '{'.
func ExtractObject(text string) (span string, ok bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c, etc.
// Source code payloads are full of those characters.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Unwrap a JSON string that itself contains the object, then unmarshal
// Models occasionally return the payload as a quoted string.
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return err
	}
	inner, ok := ExtractObject(s)
	if !ok {
		return errors.New("jsonutil: quoted payload holds no object")
	}
	return json.Unmarshal([]byte(inner), v)
}
