// Package scenario loads YAML descriptions of simulated transfers: a
// named list of requests, each pairing request options with the response
// recipe the engine should synthesize.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wiresim"
	"wiresim/recipe"
)

// Scenario is the root document.
type Scenario struct {
	Name     string    `yaml:"name"`
	Requests []Request `yaml:"requests"`
}

// Request describes one simulated exchange.
type Request struct {
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"` // request body

	Response Response `yaml:"response"`

	// BufferBody accumulates the delivered response in memory so the
	// transcript can show it.
	BufferBody bool `yaml:"bufferBody,omitempty"`

	// Extract maps variable names to JSONPath expressions evaluated
	// against the delivered response body.
	Extract map[string]string `yaml:"extract,omitempty"`
}

// Response is the recipe side of a request.
type Response struct {
	Status  int      `yaml:"status,omitempty"`
	Headers []string `yaml:"headers,omitempty"` // raw "Name: value" lines

	// Body delivers the payload whole. Chunks delivers it piecewise; an
	// empty chunk simulates a stall. The two are mutually exclusive.
	Body   string   `yaml:"body,omitempty"`
	Chunks []string `yaml:"chunks,omitempty"`

	// Error declares a transport failure surfaced after the terminal
	// marker.
	Error string `yaml:"error,omitempty"`

	// Info is opaque metadata merged into the exchange.
	Info map[string]any `yaml:"info,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural requirements: at least one request, every
// request named with a URL, and at most one body form per response.
func (s *Scenario) Validate() error {
	if len(s.Requests) == 0 {
		return errors.New("scenario has no requests")
	}
	seen := make(map[string]bool, len(s.Requests))
	for i, r := range s.Requests {
		if r.Name == "" {
			return fmt.Errorf("request %d has no name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate request name %q", r.Name)
		}
		seen[r.Name] = true
		if r.URL == "" {
			return fmt.Errorf("request %q has no url", r.Name)
		}
		if r.Response.Body != "" && len(r.Response.Chunks) > 0 {
			return fmt.Errorf("request %q declares both body and chunks", r.Name)
		}
	}
	return nil
}

// Recipe builds the response recipe for the request.
func (r Request) Recipe() *recipe.Static {
	rcp := &recipe.Static{
		Status:  r.Response.Status,
		Headers: r.Response.Headers,
		Meta:    r.Response.Info,
	}
	if len(r.Response.Chunks) > 0 {
		rcp.Body = recipe.StringChunks(r.Response.Chunks...)
	} else {
		rcp.Body = recipe.String(r.Response.Body)
	}
	if r.Response.Error != "" {
		rcp.Err = errors.New(r.Response.Error)
	}
	return rcp
}

// Options builds the captured request options for the request.
func (r Request) Options() wiresim.Options {
	method := r.Method
	if method == "" {
		method = "GET"
	}
	opts := wiresim.Options{
		Method:     method,
		URL:        r.URL,
		Headers:    r.Headers,
		BufferBody: r.BufferBody || len(r.Extract) > 0,
	}
	if r.Body != "" {
		opts.Body = wiresim.StringBody(r.Body)
	}
	return opts
}
