package devtools

import (
	"encoding/json"
	"time"

	"github.com/getmockd/gqlbridge/pkg/operation"
)

// Classify tags item and snapshots it into an Event stamped with now.
//
// Tagging never fails: items that match no rule are responses. Snapshotting
// fails for values JSON cannot represent (cycles, channels, functions, NaN),
// and that failure is returned as a *SnapshotError rather than dropping fields.
func Classify(item any, now time.Time) (Event, error) {
	kind := KindOf(item)

	data, err := json.Marshal(item)
	if err != nil {
		return Event{}, &SnapshotError{Type: kind, Err: err}
	}

	return Event{
		Type:      kind,
		Data:      data,
		Timestamp: now.UnixMilli(),
	}, nil
}

// KindOf returns the event kind for item. Rules are applied in order and the
// first match wins: operations, then items with a non-null error, then
// responses.
func KindOf(item any) Kind {
	switch v := item.(type) {
	case *operation.Operation, operation.Operation:
		return KindOperation
	case *operation.Result:
		if v != nil && v.Error != nil {
			return KindError
		}
	case operation.Result:
		if v.Error != nil {
			return KindError
		}
	case map[string]any:
		if _, ok := v["operationName"]; ok {
			return KindOperation
		}
		if e, ok := v["error"]; ok && e != nil {
			return KindError
		}
	}
	return KindResponse
}
