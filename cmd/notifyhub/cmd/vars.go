package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// parseVars merges a JSON object with key=value pairs. Dotted keys nest, so
// "user.name=Alice" resolves {{user.name}}.
func parseVars(raw string, pairs []string) (map[string]any, error) {
	vars := map[string]any{}
	if raw != "" {
		if err := decodeJSON([]byte(raw), &vars); err != nil {
			return nil, fmt.Errorf("parse --vars: %w", err)
		}
	}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, want key=value", p)
		}
		if err := setPath(vars, strings.Split(key, "."), value); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

func setPath(m map[string]any, path []string, value string) error {
	for i, seg := range path[:len(path)-1] {
		next, ok := m[seg]
		if !ok {
			child := map[string]any{}
			m[seg] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("--var %s: %s is not an object", strings.Join(path, "."), strings.Join(path[:i+1], "."))
		}
		m = child
	}
	m[path[len(path)-1]] = value
	return nil
}

// decodeJSON keeps numbers as json.Number so integers render with all digits.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
