// Package flags provides flag value types shared by gqlbridge commands.
package flags

import (
	"net/http"
	"strings"

	"github.com/getmockd/gqlbridge/pkg/cli/internal/parse"
)

// Headers collects repeated "Name: value" flags into an http.Header.
// Malformed entries are rejected when the flag is parsed.
type Headers struct {
	header http.Header
	raw    []string
}

// String returns the raw entries, comma separated.
func (h *Headers) String() string {
	return strings.Join(h.raw, ",")
}

// Set adds one header entry.
func (h *Headers) Set(value string) error {
	name, v, err := parse.Header(value)
	if err != nil {
		return err
	}
	if h.header == nil {
		h.header = http.Header{}
	}
	h.header.Add(name, v)
	h.raw = append(h.raw, value)
	return nil
}

// Type is the label shown in help output.
func (h *Headers) Type() string {
	return "header"
}

// Header returns a copy of the collected headers; never nil.
func (h *Headers) Header() http.Header {
	if h.header == nil {
		return http.Header{}
	}
	return h.header.Clone()
}
