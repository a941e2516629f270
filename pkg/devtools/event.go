package devtools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// Kind is the tag of a classified event.
type Kind string

// Event kinds.
const (
	KindOperation Kind = "operation"
	KindError     Kind = "error"
	KindResponse  Kind = "response"
)

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindOperation, KindError, KindResponse:
		return true
	default:
		return false
	}
}

// Event is a timestamped snapshot of an operation or result.
type Event struct {
	// Type tags the payload.
	Type Kind `json:"type"`

	// Data is the JSON snapshot of the classified item.
	Data json.RawMessage `json:"data"`

	// Timestamp is the classification time in milliseconds since the epoch.
	Timestamp int64 `json:"timestamp"`
}

// Clone returns a copy of e that shares no memory with it.
func (e Event) Clone() Event {
	e.Data = bytes.Clone(e.Data)
	return e
}

// Value parses the snapshot into generic JSON values.
func (e Event) Value() (any, error) {
	if len(e.Data) == 0 {
		return nil, nil
	}
	return oj.Parse(e.Data)
}

// OperationName returns the name of the operation the event describes, or of
// the operation a result answers. It is empty for anonymous operations.
func (e Event) OperationName() string {
	data, err := e.Value()
	if err != nil {
		return ""
	}
	return operationName(e.Type, data)
}

func operationName(kind Kind, data any) string {
	path := operationNamePath
	if kind != KindOperation {
		path = resultNamePath
	}
	if s, ok := path.First(data).(string); ok {
		return s
	}
	return ""
}

// SnapshotError reports an item that could not be serialized into an event.
type SnapshotError struct {
	Type Kind
	Err  error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s event: %v", e.Type, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}
