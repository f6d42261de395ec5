package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mind-engage/edueval/internal/exam"
)

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(_ context.Context, typ, _ string, _ any) error {
	p.events = append(p.events, typ)
	return nil
}

type fakeRecorder struct {
	started, answers, completed int
}

func (r *fakeRecorder) SessionStarted(string)                       { r.started++ }
func (r *fakeRecorder) AnswerRecorded(bool)                         { r.answers++ }
func (r *fakeRecorder) SessionCompleted(exam.Result, time.Duration) { r.completed++ }

// failingCatalog fails SaveResult until fail is cleared.
type failingCatalog struct {
	exam.Store
	fail bool
}

func (f *failingCatalog) SaveResult(ctx context.Context, r exam.Result) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.SaveResult(ctx, r)
}

func newTestService(t *testing.T, catalog exam.Store) (*Service, *fakePublisher, *fakeRecorder) {
	t.Helper()
	ev := threeQuestionEval()
	ev.Settings.MaxAttempts = 2
	if err := catalog.SaveEvaluation(context.Background(), ev); err != nil {
		t.Fatalf("SaveEvaluation: %v", err)
	}
	other := threeQuestionEval()
	other.Name = "Réseaux"
	if err := catalog.SaveEvaluation(context.Background(), other); err != nil {
		t.Fatalf("SaveEvaluation: %v", err)
	}
	svc := NewService(catalog, NewMemoryRegistry(), NewTokens("test-secret", time.Hour))
	svc.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 1)) }
	pub, rec := &fakePublisher{}, &fakeRecorder{}
	svc.Events, svc.Metrics = pub, rec
	return svc, pub, rec
}

func TestService_StartValidation(t *testing.T) {
	svc, _, _ := newTestService(t, exam.NewInMemoryStore())
	ctx := context.Background()
	if _, err := svc.Start(ctx, "Algorithmique", ""); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	if _, err := svc.Start(ctx, "", "s1"); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	if _, err := svc.Start(ctx, "Inconnue", "s1"); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_StartIsIdempotent(t *testing.T) {
	svc, pub, rec := newTestService(t, exam.NewInMemoryStore())
	ctx := context.Background()

	first, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if first.ResumeToken == "" || first.Resumed {
		t.Fatalf("unexpected first start: %+v", first)
	}
	if _, _, err := svc.Answer(ctx, first.Session.ID, "a"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	again, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !again.Resumed || again.Session.ID != first.Session.ID || again.Session.CurrentIndex != 1 {
		t.Fatalf("expected the same in-progress session, got %+v", again.Session)
	}
	if rec.started != 1 || len(pub.events) != 1 {
		t.Fatalf("resume must not count as a new start: started=%d events=%v", rec.started, pub.events)
	}

	if _, err := svc.Start(ctx, "Réseaux", "s1"); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState for a second evaluation, got %v", err)
	}
}

func TestService_ResumeToken(t *testing.T) {
	svc, _, _ := newTestService(t, exam.NewInMemoryStore())
	ctx := context.Background()
	st, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, err := svc.Resume(ctx, st.ResumeToken)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got.Session.ID != st.Session.ID {
		t.Fatalf("resumed %s, want %s", got.Session.ID, st.Session.ID)
	}
	if _, err := svc.Resume(ctx, "not-a-token"); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	other := NewTokens("other-secret", time.Hour)
	forged, _ := other.Issue(st.Session)
	if _, err := svc.Resume(ctx, forged); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput for foreign signature, got %v", err)
	}
}

func TestService_CompleteSavesResultOnce(t *testing.T) {
	catalog := exam.NewInMemoryStore()
	svc, pub, rec := newTestService(t, catalog)
	ctx := context.Background()

	st, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := st.Session.ID
	for i := 0; i < 3; i++ {
		s, _ := svc.Get(ctx, id)
		q, _ := s.Current()
		if _, _, err := svc.Answer(ctx, id, q.CorrectAnswer()); err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
	}
	if _, _, err := svc.Answer(ctx, id, "a"); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState after completion, got %v", err)
	}
	res, err := svc.Result(ctx, id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Score != 3 || res.Total != 3 || res.Percentage != 100 {
		t.Fatalf("unexpected result: %+v", res)
	}
	results, _ := catalog.ListResults(ctx)
	if len(results) != 1 {
		t.Fatalf("expected exactly one stored result, got %d", len(results))
	}
	if rec.completed != 1 || rec.answers != 3 {
		t.Fatalf("unexpected metrics: %+v", rec)
	}
	if pub.events[len(pub.events)-1] != EventResultRecorded {
		t.Fatalf("expected ResultRecorded event, got %v", pub.events)
	}

	if err := svc.Discard(ctx, id); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := svc.Get(ctx, id); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestService_MaxAttempts(t *testing.T) {
	svc, _, _ := newTestService(t, exam.NewInMemoryStore())
	ctx := context.Background()
	for attempt := 0; attempt < 2; attempt++ {
		st, err := svc.Start(ctx, "Algorithmique", "s1")
		if err != nil {
			t.Fatalf("attempt %d: %v", attempt, err)
		}
		for _, sel := range []string{"a", "a", "a"} {
			if _, _, err := svc.Answer(ctx, st.Session.ID, sel); err != nil {
				t.Fatalf("Answer: %v", err)
			}
		}
	}
	if _, err := svc.Start(ctx, "Algorithmique", "s1"); !errors.Is(err, exam.ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if _, err := svc.Start(ctx, "Algorithmique", "s2"); err != nil {
		t.Fatalf("other students are unaffected: %v", err)
	}
}

func TestService_ResultRetriesFailedSave(t *testing.T) {
	catalog := &failingCatalog{Store: exam.NewInMemoryStore()}
	svc, _, _ := newTestService(t, catalog)
	ctx := context.Background()

	st, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	catalog.fail = true
	var lastErr error
	for _, sel := range []string{"a", "b", "c"} {
		_, _, lastErr = svc.Answer(ctx, st.Session.ID, sel)
	}
	if lastErr == nil {
		t.Fatalf("expected save failure on the last answer")
	}
	s, _ := svc.Get(ctx, st.Session.ID)
	if s.State != Completed || s.ResultSaved {
		t.Fatalf("unexpected session after failed save: state=%s saved=%v", s.State, s.ResultSaved)
	}

	catalog.fail = false
	res, err := svc.Result(ctx, st.Session.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Score != 3 {
		t.Fatalf("unexpected score %d", res.Score)
	}
	results, _ := catalog.ListResults(ctx)
	if len(results) != 1 {
		t.Fatalf("expected one stored result, got %d", len(results))
	}
}

func TestService_StartSavesPendingResultFirst(t *testing.T) {
	catalog := &failingCatalog{Store: exam.NewInMemoryStore()}
	svc, _, _ := newTestService(t, catalog)
	ctx := context.Background()

	st, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	catalog.fail = true
	for _, sel := range []string{"a", "b", "c"} {
		svc.Answer(ctx, st.Session.ID, sel)
	}

	if _, err := svc.Start(ctx, "Algorithmique", "s1"); err == nil {
		t.Fatalf("expected Start to fail while the pending result cannot be saved")
	}
	if s, err := svc.Get(ctx, st.Session.ID); err != nil || s.State != Completed {
		t.Fatalf("completed session must be kept until its result is stored: %v", err)
	}

	catalog.fail = false
	again, err := svc.Start(ctx, "Algorithmique", "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if again.Session.ID == st.Session.ID {
		t.Fatalf("expected a new session")
	}
	n, _ := catalog.CountResults(ctx, "s1", "Algorithmique")
	if n != 1 {
		t.Fatalf("expected the first attempt to be stored, got %d results", n)
	}

	// second attempt completes; maxAttempts is 2 so a third start is refused
	for _, sel := range []string{"a", "b", "c"} {
		if _, _, err := svc.Answer(ctx, again.Session.ID, sel); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	if _, err := svc.Start(ctx, "Algorithmique", "s1"); !errors.Is(err, exam.ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
}

func TestService_PreviousAndReanswer(t *testing.T) {
	svc, _, _ := newTestService(t, exam.NewInMemoryStore())
	ctx := context.Background()
	st, _ := svc.Start(ctx, "Algorithmique", "s1")
	id := st.Session.ID

	if _, err := svc.Previous(ctx, id); !errors.Is(err, exam.ErrState) {
		t.Fatalf("expected ErrState at first question, got %v", err)
	}
	svc.Answer(ctx, id, "b")
	s, err := svc.Previous(ctx, id)
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.CurrentIndex != 0 || len(s.Responses) != 1 {
		t.Fatalf("unexpected session: %+v", s)
	}
}
