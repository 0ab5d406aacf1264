package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pieceflow/dealbridge/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidStage):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEncodeRecordFailed),
		errors.Is(err, domain.ErrMissingPiece):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrQueueOperationFailed):
		respondError(w, http.StatusBadGateway, "queue operation failed")
	case errors.Is(err, domain.ErrDatabaseOperation):
		respondError(w, http.StatusServiceUnavailable, "database operation failed")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
