// Package admin serves the HTTP surface of a gqlbridge process.
//
// Endpoints (paths are configurable, these are the defaults):
//
//	GET  /health             - Health check
//	GET  /__devtools/events  - Cached devtools events, filterable
//	GET  /__devtools/state   - Bridge state summary
//	POST /graphql            - Execute a GraphQL request through the client
//
// The events endpoint accepts these query parameters:
//
//	type           - operation, error or response
//	operationName  - events for operations with this name, and their results
//	path           - JSONPath that must match inside the event data
//	since          - minimum timestamp in milliseconds
//	offset, limit  - paging
//
// Example:
//
//	curl 'http://localhost:4000/__devtools/events?type=error&limit=10'
package admin
