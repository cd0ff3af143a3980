package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tkrehbiel/activitynode/server/activity"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

// largest activity body accepted by a POST handler
const maxBodyBytes = 256 << 10

type errorResponse struct {
	Error  string          `json:"error"`
	Issues activity.Issues `json:"issues,omitempty"`
}

// readJSON decodes a request body into a generic JSON value
func readJSON(r *http.Request) (any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, err)
	}
	return v, nil
}

// statusCode maps a pipeline result onto an HTTP status
func statusCode(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusAccepted
	case errors.Is(err, ErrMalformedInput):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeResult reports the outcome of an inbox or outbox POST
func writeResult(w http.ResponseWriter, err error) {
	status := statusCode(err)
	if err == nil {
		w.WriteHeader(status)
		return
	}
	resp := errorResponse{Error: err.Error()}
	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Error = "invalid activity"
		resp.Issues = verr.Issues
	}
	if status == http.StatusInternalServerError {
		// don't leak storage details to remote servers
		resp.Error = http.StatusText(status)
	}
	writeJSON(w, status, "application/json", resp)
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		telemetry.Error(err, "marshaling response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(jsonBytes)
}
