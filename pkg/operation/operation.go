package operation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Errors returned when building operations.
var (
	ErrEmptyQuery   = errors.New("query is required")
	ErrInvalidQuery = errors.New("invalid query")
	ErrNoOperation  = errors.New("no operation found in query")
)

// Kind is the kind of a GraphQL operation.
type Kind string

// Operation kinds. Teardown is dispatched by the client when a caller stops
// listening to an operation's results.
const (
	KindQuery        Kind = "query"
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
	KindTeardown     Kind = "teardown"
)

// Operation is a named, parameterized request issued to a client.
// Operations are treated as immutable once dispatched; use the With* methods
// to derive modified copies.
type Operation struct {
	// Key identifies the request by query text and variables.
	Key uint64 `json:"key"`

	// Kind is the operation kind (query, mutation, subscription, teardown).
	Kind Kind `json:"kind"`

	// OperationName is the name declared in the document, empty for anonymous operations.
	OperationName string `json:"operationName"`

	// Query is the GraphQL document text.
	Query string `json:"query"`

	// Variables are the variable values for the document.
	Variables map[string]any `json:"variables,omitempty"`

	// Context holds caller metadata attached to the operation.
	Context map[string]any `json:"context,omitempty"`

	origin *Operation
}

// New builds an Operation from raw query text and optional variables.
func New(query string, variables map[string]any) (*Operation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	kind, name, err := Parse(query)
	if err != nil {
		return nil, err
	}

	key, err := Key(query, variables)
	if err != nil {
		return nil, err
	}

	return &Operation{
		Key:           key,
		Kind:          kind,
		OperationName: name,
		Query:         query,
		Variables:     variables,
	}, nil
}

// Parse returns the kind and name of the first operation in a GraphQL document.
func Parse(query string) (Kind, string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: query})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if len(doc.Operations) == 0 {
		return "", "", ErrNoOperation
	}

	op := doc.Operations[0]
	switch op.Operation {
	case ast.Mutation:
		return KindMutation, op.Name, nil
	case ast.Subscription:
		return KindSubscription, op.Name, nil
	default:
		return KindQuery, op.Name, nil
	}
}

// Key derives a stable request key from query text and variables.
// Variables are encoded with sorted map keys so equal values hash equally.
func Key(query string, variables map[string]any) (uint64, error) {
	d := xxhash.New()
	_, _ = d.WriteString(strings.TrimSpace(query))
	if len(variables) > 0 {
		vars, err := json.Marshal(variables)
		if err != nil {
			return 0, fmt.Errorf("failed to encode variables: %w", err)
		}
		_, _ = d.Write([]byte{0})
		_, _ = d.Write(vars)
	}
	return d.Sum64(), nil
}

// WithContext returns a copy of the operation with key set to value in its context.
func (o *Operation) WithContext(key string, value any) *Operation {
	cp := *o
	cp.Context = maps.Clone(o.Context)
	if cp.Context == nil {
		cp.Context = make(map[string]any, 1)
	}
	cp.Context[key] = value
	return &cp
}

// Teardown returns a teardown operation for o.
func (o *Operation) Teardown() *Operation {
	cp := *o
	cp.Kind = KindTeardown
	cp.origin = o
	return &cp
}

// Origin returns the operation a teardown ends, or nil for other kinds.
func (o *Operation) Origin() *Operation {
	if o.Kind != KindTeardown {
		return nil
	}
	return o.origin
}

// String returns a short description used in logs.
func (o *Operation) String() string {
	name := o.OperationName
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("%s %s (%x)", o.Kind, name, o.Key)
}
