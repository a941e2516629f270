package admin

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/gqlbridge/pkg/devtools"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: a.Uptime(),
	})
}

// handleListEvents returns cached events matching the query filters.
func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	cache := a.state.Cache()
	events, err := cache.List(filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if events == nil {
		events = []devtools.Event{}
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Events: events,
		Count:  len(events),
		Total:  cache.Len(),
	})
}

// handleGetState summarizes the bridge state.
func (a *API) handleGetState(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{
		Active:         a.state.Active(),
		ClientAttached: a.state.Client() != nil,
		EventCount:     a.state.Cache().Len(),
	}
	if a.panels != nil {
		resp.Panels = a.panels.PeerCount()
	}
	writeJSON(w, http.StatusOK, resp)
}
