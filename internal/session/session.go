// Package session drives a single test-taker through an evaluation.
package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/mind-engage/edueval/internal/exam"
	"github.com/mind-engage/edueval/internal/grading"
)

type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Completed  State = "completed"
)

var defaultGrader = grading.NewDefaultGrader()

// Session is the live progression of one student through one evaluation.
// Evaluation holds the session's own question order; Order maps each
// position back to the index in the stored evaluation.
type Session struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"student_id"`
	Evaluation   exam.Evaluation `json:"evaluation"`
	Order        []int           `json:"order"`
	CurrentIndex int             `json:"current_index"`
	Responses    []exam.Response `json:"responses"`
	StartedAt    time.Time       `json:"started_at"`
	State        State           `json:"state"`

	// Result is filled once, the first time a completed session is scored.
	Result      *exam.Result `json:"result,omitempty"`
	ResultSaved bool         `json:"result_saved,omitempty"`

	rng *rand.Rand
}

// New returns a session in the NotStarted state. rng is used to shuffle
// questions when the evaluation asks for it; nil keeps stored order.
func New(id string, rng *rand.Rand) *Session {
	return &Session{ID: id, State: NotStarted, rng: rng}
}

func (s *Session) Start(ev exam.Evaluation, studentID string, now time.Time) error {
	if s.State != NotStarted {
		return fmt.Errorf("%w: session already %s", exam.ErrState, s.State)
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return fmt.Errorf("%w: student id required", exam.ErrInput)
	}
	if len(ev.Questions) == 0 {
		return fmt.Errorf("%w: evaluation %q has no questions", exam.ErrInput, ev.Name)
	}

	order := make([]int, len(ev.Questions))
	for i := range order {
		order[i] = i
	}
	if ev.Settings.ShuffleQuestions && s.rng != nil {
		s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	view := ev
	view.Questions = make([]exam.Question, len(order))
	for pos, idx := range order {
		view.Questions[pos] = ev.Questions[idx]
	}

	s.StudentID = studentID
	s.Evaluation = view
	s.Order = order
	s.CurrentIndex = 0
	s.Responses = nil
	s.StartedAt = now
	s.State = InProgress
	return nil
}

// Current returns the question at CurrentIndex.
func (s *Session) Current() (exam.Question, error) {
	if s.State == NotStarted {
		return exam.Question{}, fmt.Errorf("%w: session not started", exam.ErrState)
	}
	return s.Evaluation.Questions[s.CurrentIndex], nil
}

// RecordAnswerAndAdvance records the response for the current question and
// moves on; answering the last question completes the session without
// moving the index. Re-answering a question after GoToPrevious replaces its
// earlier response.
func (s *Session) RecordAnswerAndAdvance(selected string) (exam.Response, error) {
	if s.State != InProgress {
		return exam.Response{}, fmt.Errorf("%w: cannot answer while %s", exam.ErrState, s.State)
	}
	q := s.Evaluation.Questions[s.CurrentIndex]
	if !slices.Contains(q.Options, selected) {
		return exam.Response{}, fmt.Errorf("%w: %q is not an option of question %d", exam.ErrInput, selected, s.CurrentIndex+1)
	}
	ok, err := defaultGrader.Grade(q, selected)
	if err != nil {
		return exam.Response{}, err
	}
	resp := exam.Response{QuestionIndex: s.CurrentIndex, SelectedOption: selected, IsCorrect: ok}
	if s.CurrentIndex < len(s.Responses) {
		s.Responses[s.CurrentIndex] = resp
	} else {
		s.Responses = append(s.Responses, resp)
	}

	if s.CurrentIndex == len(s.Evaluation.Questions)-1 {
		s.State = Completed
	} else {
		s.CurrentIndex++
	}
	return resp, nil
}

func (s *Session) GoToPrevious() error {
	if s.State != InProgress {
		return fmt.Errorf("%w: cannot navigate while %s", exam.ErrState, s.State)
	}
	if s.CurrentIndex == 0 {
		return fmt.Errorf("%w: already at the first question", exam.ErrState)
	}
	s.CurrentIndex--
	return nil
}

// Score runs the scorer the first time it is called on a completed session
// and returns the cached Result afterwards.
func (s *Session) Score(now time.Time) (exam.Result, error) {
	if s.State != Completed {
		return exam.Result{}, fmt.Errorf("%w: session is %s", exam.ErrState, s.State)
	}
	if s.Result != nil {
		return *s.Result, nil
	}
	res, err := grading.Score(s.Evaluation, s.Responses, s.StudentID, now)
	if err != nil {
		return exam.Result{}, err
	}
	s.Result = &res
	return res, nil
}

// Elapsed is informational; the per-question time setting is never enforced.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

func (s *Session) clone() *Session {
	c := *s
	c.Order = append([]int(nil), s.Order...)
	c.Responses = append([]exam.Response(nil), s.Responses...)
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	return &c
}
