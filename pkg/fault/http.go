package fault

import (
	"encoding/json"
	"errors"
	"net/http"
)

// errorBody is the JSON envelope rendered for client-visible failures.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Detail  any    `json:"detail,omitempty"`
	} `json:"error"`
}

// WriteError renders err as a terminal HTTP response and returns the status
// it wrote. Structured errors keep their status and detail; ErrNotFound
// becomes a 404; anything else becomes a generic 500 with no detail, so
// internal information never leaks to the client.
func WriteError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	var detail any

	var fe *Error
	switch {
	case errors.As(err, &fe):
		status = fe.Status
		detail = fe.Detail
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	}

	var body errorBody
	body.Error.Status = status
	body.Error.Message = http.StatusText(status)
	body.Error.Detail = detail

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
	return status
}
