package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/session"
)

type questionView struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

type sessionView struct {
	ID                 string        `json:"id"`
	StudentID          string        `json:"student_id"`
	EvaluationName     string        `json:"evaluation_name"`
	State              session.State `json:"state"`
	CurrentIndex       int           `json:"current_index"`
	Total              int           `json:"total"`
	Answered           int           `json:"answered"`
	Question           *questionView `json:"question,omitempty"`
	SecondsPerQuestion int           `json:"time_per_question"`
	ElapsedSeconds     int64         `json:"elapsed_seconds"`
	ResumeToken        string        `json:"resume_token,omitempty"`
	Resumed            bool          `json:"resumed,omitempty"`
	Result             *exam.Result  `json:"result,omitempty"`
	// Last is the graded answer just recorded, shown when the evaluation
	// allows immediate feedback.
	Last *exam.Response `json:"last,omitempty"`
}

func viewOf(s *session.Session, now time.Time) sessionView {
	v := sessionView{
		ID:                 s.ID,
		StudentID:          s.StudentID,
		EvaluationName:     s.Evaluation.Name,
		State:              s.State,
		CurrentIndex:       s.CurrentIndex,
		Total:              len(s.Evaluation.Questions),
		Answered:           len(s.Responses),
		SecondsPerQuestion: s.Evaluation.Settings.SecondsPerQuestion,
		ElapsedSeconds:     int64(s.Elapsed(now) / time.Second),
	}
	if s.State == session.InProgress {
		if q, err := s.Current(); err == nil {
			v.Question = &questionView{Text: q.Text, Options: q.Options}
		}
	}
	if s.State == session.Completed && s.Result != nil && s.Evaluation.Settings.ShowImmediateResults {
		r := *s.Result
		v.Result = &r
	}
	return v
}

// POST /sessions {"evaluation_name","student_id"}
func StartSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EvaluationName string `json:"evaluation_name"`
			StudentID      string `json:"student_id"`
		}
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		st, err := svc.Start(r.Context(), req.EvaluationName, req.StudentID)
		if err != nil {
			writeError(w, err)
			return
		}
		v := viewOf(st.Session, svc.Now())
		v.ResumeToken, v.Resumed = st.ResumeToken, st.Resumed
		code := http.StatusCreated
		if st.Resumed {
			code = http.StatusOK
		}
		writeJSON(w, code, v)
	}
}

// GET /sessions/resume?token=
func ResumeSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := r.URL.Query().Get("token")
		if tok == "" {
			http.Error(w, "token required", 400)
			return
		}
		st, err := svc.Resume(r.Context(), tok)
		if err != nil {
			writeError(w, err)
			return
		}
		v := viewOf(st.Session, svc.Now())
		v.ResumeToken, v.Resumed = st.ResumeToken, true
		writeJSON(w, http.StatusOK, v)
	}
}

// GET /sessions/{id}
func GetSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(s, svc.Now()))
	}
}

// POST /sessions/{id}/answer {"selected"}
func AnswerHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Selected string `json:"selected"`
		}
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		s, resp, err := svc.Answer(r.Context(), chi.URLParam(r, "id"), req.Selected)
		if err != nil {
			writeError(w, err)
			return
		}
		v := viewOf(s, svc.Now())
		if s.Evaluation.Settings.ShowImmediateResults {
			v.Last = &resp
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// POST /sessions/{id}/previous
func PreviousHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Previous(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(s, svc.Now()))
	}
}

// GET /sessions/{id}/result
func SessionResultHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Result(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// DELETE /sessions/{id}
func DiscardSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
