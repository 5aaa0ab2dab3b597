package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
)

type errorsRes struct {
	Errors []string `json:"errors"`
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrors writes the standard error body.
func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, errorsRes{Errors: msgs})
}

// writeError maps err to a status code and writes its client-facing messages.
// Errors without messages for clients are logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	msgs := bowling.Messages(err)
	if len(msgs) == 0 {
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled error")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeErrors(w, statusFor(bowling.CodeOf(err)), msgs...)
}

// statusFor maps a domain error code to an HTTP status code.
func statusFor(code bowling.Code) int {
	switch code {
	case bowling.CodeGameNotFound:
		return http.StatusNotFound
	case bowling.CodeGameAlreadyEnded:
		return http.StatusBadRequest
	case bowling.CodeScoreOutOfRange,
		bowling.CodeInvalidFrame,
		bowling.CodeInvalidThrow,
		bowling.CodeFrameScoreExceeded:
		return http.StatusUnprocessableEntity
	case bowling.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
