package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cognicore/habitual/internal/logging"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		level := zerolog.WarnLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		logging.Ctx(r.Context()).WithLevel(level).Err(err).Str("code", code).Int("status", status).Msg("api error")
	}
	respondJSON(w, status, errorEnvelope{Error: APIError{Code: code, Message: message}})
}
