package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
)

type errorResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Error     any      `json:"error,omitempty"`
	Missing   []string `json:"missing,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(constants.LogFailedEncodeJSON, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeInternalError is the last-resort 500 body.
func writeInternalError(w http.ResponseWriter, err string) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message:   constants.ResponseInternalError,
		Error:     err,
		Timestamp: timestamp(time.Now()),
	})
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
