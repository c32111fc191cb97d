// Package extract pulls values out of simulated JSON response bodies
// using JSONPath expressions, so scenario assertions can reference
// fields of a mock payload by path.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// FromJSON evaluates each rule (variable name -> JSONPath) against the
// body. Paths use JSONPath syntax ($.foo.bar, $.items[0].id, $.a[*].b)
// and are translated to gjson form. All rule failures are joined into
// one error.
func FromJSON(body []byte, rules map[string]string) (map[string]any, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}

	vars := make(map[string]any, len(rules))
	var errs []error
	for name, path := range rules {
		value := gjson.GetBytes(body, toGJSONPath(path))
		if !value.Exists() {
			errs = append(errs, fmt.Errorf("path %q not found for variable %q", path, name))
			continue
		}
		vars[name] = value.Value()
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vars, nil
}

// toGJSONPath converts JSONPath to gjson syntax:
// $.foo.bar -> foo.bar, $.items[2].id -> items.2.id, $.a[*].b -> a.#.b.
func toGJSONPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")

	var out strings.Builder
	for i := 0; i < len(path); {
		if path[i] != '[' {
			out.WriteByte(path[i])
			i++
			continue
		}
		end := strings.IndexByte(path[i:], ']')
		if end < 0 {
			out.WriteString(path[i:])
			break
		}
		index := path[i+1 : i+end]
		if index == "*" {
			out.WriteString(".#")
		} else {
			out.WriteByte('.')
			out.WriteString(index)
		}
		i += end + 1
	}
	return out.String()
}
