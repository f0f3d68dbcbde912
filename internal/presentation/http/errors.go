package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	"github.com/mercato/shopcore/internal/pkg/logging"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the command error taxonomy onto HTTP statuses:
// validation 400, not found 404, business rule 409. Anything unclassified
// is a 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "VALIDATION"})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: "NOT_FOUND"})
	case apperr.KindBusinessRule:
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: "BUSINESS_RULE"})
	default:
		logging.FromContext(r.Context()).Error("unhandled command error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "VALIDATION"})
}
