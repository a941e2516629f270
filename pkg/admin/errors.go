package admin

import (
	"log/slog"
)

// Safe error messages for client responses.
const (
	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgClientUnavailable is returned when no client is attached.
	ErrMsgClientUnavailable = "GraphQL client is not available"

	// ErrMsgNoResult is returned when a request finished without a result.
	ErrMsgNoResult = "Request finished without a result"
)

// sanitizeJSONError logs a body parsing failure and returns a safe message.
func sanitizeJSONError(err error, log *slog.Logger) string {
	if log != nil {
		log.Debug("JSON parsing failed", "error", err)
	}
	return ErrMsgInvalidJSON
}
