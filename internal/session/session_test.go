package session

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mind-engage/edueval/internal/exam"
)

func threeQuestionEval() exam.Evaluation {
	mk := func(text string, correct int) exam.Question {
		return exam.Question{
			Text:               text,
			Type:               exam.TypeQCM,
			Options:            []string{"a", "b", "c", "d"},
			CorrectOptionIndex: correct,
		}
	}
	s := exam.DefaultSettings()
	s.ShuffleQuestions = false
	return exam.Evaluation{
		Name:      "Algorithmique",
		Questions: []exam.Question{mk("Q1", 1), mk("Q2", 2), mk("Q3", 3)},
		Settings:  s,
	}
}

func started(t *testing.T) *Session {
	t.Helper()
	s := New("sess-1", nil)
	if err := s.Start(threeQuestionEval(), "student-1", time.Unix(1000, 0)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestStart_Validation(t *testing.T) {
	if err := New("x", nil).Start(threeQuestionEval(), "  ", time.Now()); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput for blank student, got %v", err)
	}
	if err := New("x", nil).Start(exam.Evaluation{Name: "empty"}, "s", time.Now()); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput for empty evaluation, got %v", err)
	}
	s := started(t)
	if err := s.Start(threeQuestionEval(), "s", time.Now()); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState on second Start, got %v", err)
	}
}

func TestStart_InitialState(t *testing.T) {
	s := started(t)
	if s.State != InProgress || s.CurrentIndex != 0 || len(s.Responses) != 0 {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.StudentID != "student-1" || !s.StartedAt.Equal(time.Unix(1000, 0)) {
		t.Fatalf("unexpected identity: %+v", s)
	}
	q, err := s.Current()
	if err != nil || q.Text != "Q1" {
		t.Fatalf("Current = %+v, %v", q, err)
	}
}

func TestNotStarted_RejectsTransitions(t *testing.T) {
	s := New("x", nil)
	if _, err := s.RecordAnswerAndAdvance("a"); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
	if err := s.GoToPrevious(); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
	if _, err := s.Current(); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
}

func TestScenarioC_TwoOfThree(t *testing.T) {
	s := started(t)
	for _, sel := range []string{"a", "d", "c"} {
		if _, err := s.RecordAnswerAndAdvance(sel); err != nil {
			t.Fatalf("answer %q: %v", sel, err)
		}
	}
	res, err := s.Score(time.Unix(2000, 0))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score != 2 || res.Total != 3 || math.Abs(res.Percentage-66.7) > 0.05 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestScenarioD_PreviousAtFirstQuestion(t *testing.T) {
	s := started(t)
	if err := s.GoToPrevious(); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
	if s.CurrentIndex != 0 || len(s.Responses) != 0 || s.State != InProgress {
		t.Fatalf("state changed: %+v", s)
	}
}

func TestScenarioE_LastQuestionCompletes(t *testing.T) {
	s := started(t)
	for i, sel := range []string{"a", "b", "c"} {
		if _, err := s.RecordAnswerAndAdvance(sel); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if s.State != Completed {
		t.Fatalf("expected Completed, got %s", s.State)
	}
	if s.CurrentIndex != 2 {
		t.Fatalf("index moved past the last question: %d", s.CurrentIndex)
	}
	if len(s.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(s.Responses))
	}
	if _, err := s.RecordAnswerAndAdvance("a"); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState after completion, got %v", err)
	}
	if err := s.GoToPrevious(); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState after completion, got %v", err)
	}
}

func TestReanswerReplacesResponse(t *testing.T) {
	s := started(t)
	mustAnswer(t, s, "b") // Q1 wrong
	if err := s.GoToPrevious(); err != nil {
		t.Fatalf("GoToPrevious: %v", err)
	}
	if len(s.Responses) != 1 || s.CurrentIndex != 0 {
		t.Fatalf("navigation altered responses: %+v", s.Responses)
	}
	mustAnswer(t, s, "a") // Q1 right
	if len(s.Responses) != 1 || !s.Responses[0].IsCorrect || s.Responses[0].SelectedOption != "a" {
		t.Fatalf("expected Q1 response replaced, got %+v", s.Responses)
	}
	mustAnswer(t, s, "b")
	mustAnswer(t, s, "c")
	if len(s.Responses) != len(s.Evaluation.Questions) {
		t.Fatalf("responses %d != questions %d", len(s.Responses), len(s.Evaluation.Questions))
	}
	for i, r := range s.Responses {
		if r.QuestionIndex != i {
			t.Fatalf("response %d has question index %d", i, r.QuestionIndex)
		}
	}
}

func TestRejectsUnknownOption(t *testing.T) {
	s := started(t)
	if _, err := s.RecordAnswerAndAdvance("zzz"); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	if s.CurrentIndex != 0 || len(s.Responses) != 0 {
		t.Fatalf("state changed after rejected answer")
	}
}

func TestScoreOnlyOnce(t *testing.T) {
	s := started(t)
	if _, err := s.Score(time.Now()); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState before completion, got %v", err)
	}
	for _, sel := range []string{"a", "b", "c"} {
		mustAnswer(t, s, sel)
	}
	first, err := s.Score(time.Unix(5000, 0))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, _ := s.Score(time.Unix(9000, 0))
	if !second.CompletedAt.Equal(first.CompletedAt) {
		t.Fatalf("result recomputed: %v vs %v", first.CompletedAt, second.CompletedAt)
	}
}

func TestShuffleKeepsAnswerKeys(t *testing.T) {
	ev := threeQuestionEval()
	ev.Settings.ShuffleQuestions = true
	s := New("x", rand.New(rand.NewPCG(1, 2)))
	if err := s.Start(ev, "s", time.Now()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	seen := map[int]bool{}
	for pos, idx := range s.Order {
		seen[idx] = true
		if s.Evaluation.Questions[pos].Text != ev.Questions[idx].Text {
			t.Fatalf("order mismatch at %d", pos)
		}
	}
	if len(seen) != len(ev.Questions) {
		t.Fatalf("order is not a permutation: %v", s.Order)
	}
	for s.State == InProgress {
		q, _ := s.Current()
		mustAnswer(t, s, q.CorrectAnswer())
	}
	res, err := s.Score(time.Now())
	if err != nil || res.Score != 3 {
		t.Fatalf("expected full score after shuffle, got %+v %v", res, err)
	}
}

func TestElapsedIsAdvisory(t *testing.T) {
	s := started(t)
	later := s.StartedAt.Add(10 * time.Hour)
	if got := s.Elapsed(later); got != 10*time.Hour {
		t.Fatalf("Elapsed = %v", got)
	}
	mustAnswer(t, s, "a")
	if s.State != InProgress {
		t.Fatalf("timer must not force a transition")
	}
}

func mustAnswer(t *testing.T, s *Session, sel string) {
	t.Helper()
	if _, err := s.RecordAnswerAndAdvance(sel); err != nil {
		t.Fatalf("answer %q: %v", sel, err)
	}
}
