package http

import (
	"bytes"
	"net/http"

	"github.com/mind-engage/edueval/internal/exam"
)

// GET /results
func ListResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResults(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []exam.Result{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /results/export.csv
func ExportResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResults(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := exam.WriteResultsCSV(&buf, list); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="resultats.csv"`)
		_, _ = w.Write(buf.Bytes())
	}
}

type dashboard struct {
	Evaluations       int                 `json:"evaluations"`
	Results           int                 `json:"results"`
	Questions         int                 `json:"questions"`
	AveragePercentage float64             `json:"average_percentage"`
	Recent            []evaluationSummary `json:"recent_evaluations"`
}

// GET /dashboard
func DashboardHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := store.ListEvaluations(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		results, err := store.ListResults(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		d := dashboard{Evaluations: len(evs), Results: len(results), Recent: []evaluationSummary{}}
		for _, e := range evs {
			d.Questions += len(e.Questions)
		}
		if len(results) > 0 {
			var sum float64
			for _, res := range results {
				sum += res.Percentage
			}
			d.AveragePercentage = sum / float64(len(results))
		}
		// newest first, five at most
		for i := len(evs) - 1; i >= 0 && len(d.Recent) < 5; i-- {
			d.Recent = append(d.Recent, summarize(evs[i]))
		}
		writeJSON(w, http.StatusOK, d)
	}
}
