package devtools

import (
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// EventCache is an append-only, insertion-ordered log of events.
// Entries are never modified or removed; readers always receive copies.
type EventCache struct {
	mu     sync.RWMutex
	events []Event
}

// NewEventCache creates an empty cache.
func NewEventCache() *EventCache {
	return &EventCache{}
}

// Append adds ev to the end of the log.
func (c *EventCache) Append(ev Event) {
	ev = ev.Clone()
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

// Len returns the number of cached events.
func (c *EventCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// At returns a copy of the i-th event.
func (c *EventCache) At(i int) (Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.events) {
		return Event{}, false
	}
	return c.events[i].Clone(), true
}

// Events returns copies of all events in insertion order.
func (c *EventCache) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Event, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Clone()
	}
	return out
}

// Filter selects cached events.
type Filter struct {
	// Type keeps only events of this kind.
	Type Kind

	// OperationName keeps operation events with this name and result events
	// whose operation has this name.
	OperationName string

	// Path is a JSONPath that must match at least one value inside the event data.
	Path string

	// Since keeps events with Timestamp >= Since (milliseconds).
	Since int64

	// Offset skips this many matching events.
	Offset int

	// Limit caps the number of events returned. Zero means no limit.
	Limit int
}

var (
	operationNamePath = jp.MustParseString("$.operationName")
	resultNamePath    = jp.MustParseString("$.operation.operationName")
)

// List returns copies of the events matching f, in insertion order.
func (c *EventCache) List(f *Filter) ([]Event, error) {
	if f == nil {
		return c.Events(), nil
	}

	var pathExpr jp.Expr
	if f.Path != "" {
		expr, err := jp.ParseString(f.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", f.Path, err)
		}
		pathExpr = expr
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Event
	skipped := 0
	for _, ev := range c.events {
		if !matches(ev, f, pathExpr) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, ev.Clone())
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func matches(ev Event, f *Filter, pathExpr jp.Expr) bool {
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	if ev.Timestamp < f.Since {
		return false
	}
	if f.OperationName == "" && pathExpr == nil {
		return true
	}

	data, err := oj.Parse(ev.Data)
	if err != nil {
		return false
	}

	if f.OperationName != "" && operationName(ev.Type, data) != f.OperationName {
		return false
	}

	if pathExpr != nil && len(pathExpr.Get(data)) == 0 {
		return false
	}
	return true
}
