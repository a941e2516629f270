package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/getmockd/gqlbridge/pkg/operation"
)

// maxGraphQLBody caps the size of a POST /graphql body.
const maxGraphQLBody = 1 << 20

// handleGraphQL executes a request through the client, so it passes through
// every installed exchange, and answers with the final result of the stream.
func (a *API) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if a.client == nil {
		writeError(w, http.StatusServiceUnavailable, "client_unavailable", ErrMsgClientUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxGraphQLBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", sanitizeJSONError(err, a.log))
		return
	}
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", sanitizeJSONError(err, a.log))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []operation.GraphQLError{{Message: operation.ErrEmptyQuery.Error()}},
		})
		return
	}

	op, err := a.client.CreateRequest(req.Query, req.Variables)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []operation.GraphQLError{{Message: err.Error()}},
		})
		return
	}
	if req.OperationName != "" && req.OperationName != op.OperationName {
		named := *op
		named.OperationName = req.OperationName
		op = &named
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	var last *operation.Result
	for res := range a.client.ExecuteQuery(ctx, op) {
		last = res
	}
	if last == nil {
		if ctx.Err() != nil {
			writeError(w, http.StatusGatewayTimeout, "timeout", ctx.Err().Error())
			return
		}
		writeError(w, http.StatusBadGateway, "no_result", ErrMsgNoResult)
		return
	}

	writeJSON(w, statusFor(last), toResponse(last))
}

func toResponse(res *operation.Result) GraphQLResponse {
	resp := GraphQLResponse{Data: res.Data, Extensions: res.Extensions}
	if res.Error == nil {
		return resp
	}
	resp.Errors = append(resp.Errors, res.Error.GraphQLErrors...)
	if res.Error.NetworkError != nil {
		resp.Errors = append(resp.Errors, operation.GraphQLError{
			Message:    res.Error.NetworkError.Error(),
			Extensions: map[string]any{"code": "NETWORK_ERROR"},
		})
	}
	return resp
}

func statusFor(res *operation.Result) int {
	if res.Error != nil && res.Error.NetworkError != nil {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
