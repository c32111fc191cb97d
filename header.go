package wiresim

import "strings"

// Header maps lower-cased header names to their values in arrival order.
// It is populated from a recipe's raw header lines when the first chunk
// of an exchange is processed.
type Header map[string][]string

// Add appends a value under the lower-cased key.
func (h Header) Add(key, value string) {
	key = strings.ToLower(key)
	h[key] = append(h[key], value)
}

// Get returns the first value for the key, or "" (case-insensitive).
func (h Header) Get(key string) string {
	vs := h[strings.ToLower(key)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all values for the key in arrival order.
func (h Header) Values(key string) []string {
	return h[strings.ToLower(key)]
}

// Del removes all values for the key.
func (h Header) Del(key string) {
	delete(h, strings.ToLower(key))
}

// addLine merges one raw "Name: value" line. Lines without a colon
// (status lines, blanks) are ignored.
func (h Header) addLine(line string) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	h.Add(name, strings.TrimSpace(value))
}
