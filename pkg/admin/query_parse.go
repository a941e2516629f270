package admin

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/getmockd/gqlbridge/pkg/devtools"
)

// parsePositiveInt returns a parsed int only when the value is a valid positive integer.
func parsePositiveInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseNonNegativeInt returns a parsed int only when the value is a valid non-negative integer.
func parseNonNegativeInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseEventFilter builds a cache filter from query parameters.
func parseEventFilter(q url.Values) (*devtools.Filter, error) {
	f := &devtools.Filter{
		Type:          devtools.Kind(q.Get("type")),
		OperationName: q.Get("operationName"),
		Path:          q.Get("path"),
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", f.Type)
	}
	if v := q.Get("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil || since < 0 {
			return nil, fmt.Errorf("invalid since %q", v)
		}
		f.Since = since
	}
	if v := q.Get("offset"); v != "" {
		n, ok := parseNonNegativeInt(v)
		if !ok {
			return nil, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, ok := parsePositiveInt(v)
		if !ok {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}
	return f, nil
}
