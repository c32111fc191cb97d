// Package recipe describes mock HTTP responses consumed by the wiresim
// transfer engine: status code, raw header lines, a body, and opaque
// metadata. The engine synthesizes every byte of a simulated transfer
// from a recipe; no network is involved.
package recipe

// ErrorInfoKey is the info map key under which a recipe's declared
// transport error is exposed.
const ErrorInfoKey = "error"

// Recipe supplies the ingredients for one simulated response.
type Recipe interface {
	// StatusCode returns the response status. Zero means "unset" and
	// resolves to 200 in the engine.
	StatusCode() int

	// HeaderLines returns raw "Name: value" header lines. Deferred
	// lines (trailers, late headers) are included only when requested.
	HeaderLines(includeDeferred bool) []string

	// Content returns the response body. When failOnError is true and
	// the recipe declares a transport error, Content returns that error
	// instead of the body.
	Content(failOnError bool) (Body, error)

	// Info returns caller-supplied metadata merged into the exchange's
	// metadata at construction.
	Info() map[string]any
}

// Static is a fixed-value Recipe, the workhorse for tests and scenarios.
type Static struct {
	Status   int
	Headers  []string // raw "Name: value" lines
	Deferred []string // header lines surfaced only with includeDeferred
	Body     Body
	Meta     map[string]any
	Err      error // declared transport error, surfaced after the terminal marker
}

// New builds a Static recipe from a body and an info map, the minimal
// construction entry point.
func New(body Body, info map[string]any) *Static {
	return &Static{Body: body, Meta: info}
}

func (s *Static) StatusCode() int {
	return s.Status
}

func (s *Static) HeaderLines(includeDeferred bool) []string {
	if !includeDeferred || len(s.Deferred) == 0 {
		return s.Headers
	}
	lines := make([]string, 0, len(s.Headers)+len(s.Deferred))
	lines = append(lines, s.Headers...)
	lines = append(lines, s.Deferred...)
	return lines
}

func (s *Static) Content(failOnError bool) (Body, error) {
	if failOnError && s.Err != nil {
		return Body{}, s.Err
	}
	return s.Body, nil
}

// Info returns a copy of the recipe metadata. A declared error is
// exposed under ErrorInfoKey.
func (s *Static) Info() map[string]any {
	info := make(map[string]any, len(s.Meta)+1)
	for k, v := range s.Meta {
		info[k] = v
	}
	if s.Err != nil {
		info[ErrorInfoKey] = s.Err.Error()
	}
	return info
}
