package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mind-engage/edueval/internal/concept"
	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/extract"
	"github.com/mind-engage/edueval/internal/storage"
	"github.com/mind-engage/edueval/internal/synth"
)

// GenerationRecorder is the slice of metrics the authoring handlers report to.
type GenerationRecorder interface {
	QuestionsGenerated(n int)
	DocumentProcessed(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) QuestionsGenerated(int)   {}
func (nopRecorder) DocumentProcessed(string) {}

type generated struct {
	Concepts  []string        `json:"concepts"`
	Questions []exam.Question `json:"questions"`
}

func generate(gen *synth.Generator, text string) (generated, error) {
	concepts := concept.Extract(text)
	qs := gen.FromConcepts(concepts)
	if len(qs) == 0 {
		return generated{Concepts: concepts}, fmt.Errorf("%w: found %d concept(s), need at least %d",
			exam.ErrInsufficientMaterial, len(concepts), synth.MinConcepts)
	}
	return generated{Concepts: concepts, Questions: qs}, nil
}

// POST /questions/generate {"text": "..."}
func GenerateQuestionsHandler(gen *synth.Generator, rec GenerationRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", 400)
			return
		}
		out, err := generate(gen, req.Text)
		rec.QuestionsGenerated(len(out.Questions))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type documentResponse struct {
	Key       string `json:"key"`
	Filename  string `json:"filename"`
	TextChars int    `json:"text_chars"`
	generated
}

// POST /documents (multipart: file=<course document>)
func UploadDocumentHandler(bs storage.BlobStore, ex extract.Extractor, gen *synth.Generator, rec GenerationRecorder, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		key := storage.DocumentKey(hdr.Filename, data)
		if _, err := bs.Put(r.Context(), key, bytes.NewReader(data)); err != nil {
			rec.DocumentProcessed("error")
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		text, err := ex.Extract(r.Context(), hdr.Filename, data)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				rec.DocumentProcessed("error")
			} else {
				rec.DocumentProcessed("no_text")
			}
			writeError(w, err)
			return
		}
		out, err := generate(gen, text)
		rec.QuestionsGenerated(len(out.Questions))
		if err != nil {
			rec.DocumentProcessed("insufficient")
			writeError(w, err)
			return
		}
		rec.DocumentProcessed("ok")
		writeJSON(w, http.StatusOK, documentResponse{
			Key:       key,
			Filename:  hdr.Filename,
			TextChars: len([]rune(text)),
			generated: out,
		})
	}
}
