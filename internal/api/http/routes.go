// Package http exposes the authoring and evaluation-taking flows over HTTP.
package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/extract"
	"github.com/mind-engage/edueval/internal/session"
	"github.com/mind-engage/edueval/internal/storage"
	syncx "github.com/mind-engage/edueval/internal/sync"
	"github.com/mind-engage/edueval/internal/synth"
)

type Deps struct {
	Catalog   exam.Store
	Sessions  *session.Service
	Blobs     storage.BlobStore
	Extractor extract.Extractor
	Generator *synth.Generator
	Events    syncx.Publisher    // optional
	Metrics   GenerationRecorder // optional

	MaxUploadBytes int64
}

// Mount registers every API route on r.
func Mount(r chi.Router, d Deps) {
	rec := d.Metrics
	if rec == nil {
		rec = nopRecorder{}
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 20 << 20
	}

	r.Post("/documents", UploadDocumentHandler(d.Blobs, d.Extractor, d.Generator, rec, d.MaxUploadBytes))
	r.Post("/questions/generate", GenerateQuestionsHandler(d.Generator, rec))

	r.Route("/evaluations", func(er chi.Router) {
		er.Post("/", CreateEvaluationHandler(d.Catalog, d.Events))
		er.Get("/", ListEvaluationsHandler(d.Catalog))
		er.Get("/{name}", GetEvaluationHandler(d.Catalog))
	})

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", StartSessionHandler(d.Sessions))
		sr.Get("/resume", ResumeSessionHandler(d.Sessions))
		sr.Get("/{id}", GetSessionHandler(d.Sessions))
		sr.Get("/{id}/result", SessionResultHandler(d.Sessions))
		sr.Post("/{id}/answer", AnswerHandler(d.Sessions))
		sr.Post("/{id}/previous", PreviousHandler(d.Sessions))
		sr.Delete("/{id}", DiscardSessionHandler(d.Sessions))
	})

	r.Get("/results", ListResultsHandler(d.Catalog))
	r.Get("/results/export.csv", ExportResultsHandler(d.Catalog))
	r.Get("/dashboard", DashboardHandler(d.Catalog))
}
