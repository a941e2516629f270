// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Header parses one "Name: value" header. The name and value are trimmed and
// the name must be non-empty.
func Header(s string) (name, value string, err error) {
	name, value, ok := KeyValue(s, ':')
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" {
		return "", "", fmt.Errorf("header %q must have the form Name: value", s)
	}
	return name, value, nil
}

// Vars parses a JSON object of GraphQL variables. An empty string yields nil.
func Vars(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var vars map[string]any
	if err := json.Unmarshal([]byte(s), &vars); err != nil {
		return nil, fmt.Errorf("variables must be a JSON object: %w", err)
	}
	return vars, nil
}
