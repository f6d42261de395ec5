package http

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/edueval/internal/exam"
	syncx "github.com/mind-engage/edueval/internal/sync"
)

type evaluationSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	QuestionCount int           `json:"question_count"`
	Settings      exam.Settings `json:"settings"`
	CreatedAt     time.Time     `json:"created_at"`
}

func summarize(e exam.Evaluation) evaluationSummary {
	return evaluationSummary{
		ID:            e.ID,
		Name:          e.Name,
		QuestionCount: len(e.Questions),
		Settings:      e.Settings,
		CreatedAt:     e.CreatedAt,
	}
}

// POST /evaluations
// Settings fields left out of the body keep the authoring defaults.
func CreateEvaluationHandler(store exam.Store, events syncx.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string          `json:"name"`
			Questions []exam.Question `json:"questions"`
			Settings  exam.Settings   `json:"settings"`
		}
		req.Settings = exam.DefaultSettings()
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		ev := exam.Evaluation{Name: req.Name, Questions: req.Questions, Settings: req.Settings}
		if err := store.SaveEvaluation(r.Context(), ev); err != nil {
			writeError(w, err)
			return
		}
		saved, err := store.GetEvaluation(r.Context(), ev.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		if events != nil {
			if err := events.Publish(r.Context(), syncx.EventEvaluationSaved, saved.Name, summarize(saved)); err != nil {
				log.Printf("publish %s: %v", syncx.EventEvaluationSaved, err)
			}
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// GET /evaluations
func ListEvaluationsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListEvaluations(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]evaluationSummary, 0, len(list))
		for _, e := range list {
			out = append(out, summarize(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /evaluations/{name}?keys=1
func GetEvaluationHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := store.GetEvaluation(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, err)
			return
		}
		if r.URL.Query().Get("keys") != "1" {
			ev = ev.WithoutKeys()
		}
		writeJSON(w, http.StatusOK, ev)
	}
}
