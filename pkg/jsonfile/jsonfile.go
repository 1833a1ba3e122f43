// Package jsonfile reads and writes the JSON files the toolkit works on:
// session documents and card catalogs. Reading tolerates two cosmetic
// defects that show up in hand-edited files, a UTF-8 byte order mark and
// trailing commas before a closing bracket. Anything else is a ParseError.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports input that could not be decoded as JSON even after
// cosmetic recovery.
type ParseError struct {
	Path string // empty when decoding from memory
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid JSON: %v", e.Err)
	}
	return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses JSON text into the generic tree form (map[string]any,
// []any and scalars). Strict parsing is attempted first; on failure the
// input is scrubbed and parsed once more.
func Decode(data []byte) (any, error) {
	v, err := decode(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return v, nil
}

// Read loads and decodes one JSON file.
func Read(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return v, nil
}

// Write serializes v as human-readable JSON: two-space indent, the
// encoder's stable key ordering, trailing newline. The target file is
// created or overwritten.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v, nil
	}
	var recovered any
	if err := json.Unmarshal(scrub(data), &recovered); err != nil {
		return nil, err
	}
	return recovered, nil
}

// scrub removes a leading BOM and any comma whose next non-whitespace byte
// closes a container. The scan tracks string state so commas inside JSON
// strings are never touched.
func scrub(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)

	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
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
			out = append(out, c)
		case ',':
			j := i + 1
			for j < len(data) && isSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
