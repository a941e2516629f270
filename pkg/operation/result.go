package operation

import (
	"encoding/json"
	"strings"
)

// Result is the outcome of executing an Operation.
type Result struct {
	// Operation is the operation this result answers.
	Operation *Operation `json:"operation"`

	// Data is the response payload.
	Data any `json:"data,omitempty"`

	// Error is set when execution failed, fully or partially.
	Error *CombinedError `json:"error,omitempty"`

	// Extensions carries response extensions.
	Extensions map[string]any `json:"extensions,omitempty"`

	// HasNext reports whether more results follow for the same operation.
	HasNext bool `json:"hasNext"`
}

// GraphQLError is a single error from a GraphQL response.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// CombinedError joins GraphQL errors and a transport-level error into one value.
type CombinedError struct {
	GraphQLErrors []GraphQLError
	NetworkError  error
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *CombinedError {
	return &CombinedError{NetworkError: err}
}

// NewGraphQLError builds a CombinedError from GraphQL errors.
func NewGraphQLError(errs ...GraphQLError) *CombinedError {
	return &CombinedError{GraphQLErrors: errs}
}

// Error implements error.
func (e *CombinedError) Error() string {
	var parts []string
	if e.NetworkError != nil {
		parts = append(parts, "[Network] "+e.NetworkError.Error())
	}
	for _, ge := range e.GraphQLErrors {
		parts = append(parts, "[GraphQL] "+ge.Message)
	}
	return strings.Join(parts, "\n")
}

// Unwrap returns the network error, if any.
func (e *CombinedError) Unwrap() error {
	return e.NetworkError
}

// MarshalJSON encodes the error with the network error flattened to its
// message, since arbitrary error values do not serialize.
func (e *CombinedError) MarshalJSON() ([]byte, error) {
	out := struct {
		Message       string         `json:"message"`
		GraphQLErrors []GraphQLError `json:"graphQLErrors"`
		NetworkError  *string        `json:"networkError,omitempty"`
	}{
		Message:       e.Error(),
		GraphQLErrors: e.GraphQLErrors,
	}
	if out.GraphQLErrors == nil {
		out.GraphQLErrors = []GraphQLError{}
	}
	if e.NetworkError != nil {
		msg := e.NetworkError.Error()
		out.NetworkError = &msg
	}
	return json.Marshal(out)
}
