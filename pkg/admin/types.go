package admin

import (
	"github.com/getmockd/gqlbridge/pkg/devtools"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime int    `json:"uptime"`
}

// EventsResponse is the body of the events endpoint.
type EventsResponse struct {
	Events []devtools.Event `json:"events"`
	Count  int              `json:"count"`
	Total  int              `json:"total"`
}

// StateResponse is the body of the state endpoint.
type StateResponse struct {
	Active         bool `json:"active"`
	ClientAttached bool `json:"clientAttached"`
	EventCount     int  `json:"eventCount"`
	Panels         int  `json:"panels"`
}

// GraphQLRequest is the body of POST /graphql.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse is a standard GraphQL response body.
type GraphQLResponse struct {
	Data       any                      `json:"data,omitempty"`
	Errors     []operation.GraphQLError `json:"errors,omitempty"`
	Extensions map[string]any           `json:"extensions,omitempty"`
}
