package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/extract"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrNoText):
		http.Error(w, extract.ErrNoText.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, exam.ErrInsufficientMaterial):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, exam.ErrInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, exam.ErrState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

var errBadJSON = errors.New("bad json")
