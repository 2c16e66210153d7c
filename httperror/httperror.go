// Package httperror simplifies returning an error as JSON from an HTTP handler
package httperror

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type jsonError struct {
	Error string `json:"error"`
}

// Send writes message as a JSON error body with the given status. Server side
// errors are also logged.
func Send(w http.ResponseWriter, req *http.Request, status int, message string) {
	if status >= http.StatusInternalServerError {
		log.Error().Str("method", req.Method).Str("path", req.URL.Path).Int("status", status).Msg(message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message})
}
