package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/edueval/internal/exam"
)

// Event types emitted by the service.
const (
	EventSessionStarted = "SessionStarted"
	EventResultRecorded = "ResultRecorded"
)

// Publisher receives domain events (event log, message broker).
type Publisher interface {
	Publish(ctx context.Context, typ, key string, payload any) error
}

// Recorder receives observations for metrics.
type Recorder interface {
	SessionStarted(evaluation string)
	AnswerRecorded(correct bool)
	SessionCompleted(r exam.Result, elapsed time.Duration)
}

// Service runs the evaluation-taking flow on top of the catalog and a
// session registry.
type Service struct {
	Catalog  exam.Store
	Registry Registry
	Tokens   *Tokens
	Events   Publisher // optional
	Metrics  Recorder  // optional

	Now     func() time.Time
	NewRand func() *rand.Rand

	mu sync.Mutex
}

func NewService(catalog exam.Store, registry Registry, tokens *Tokens) *Service {
	return &Service{
		Catalog:  catalog,
		Registry: registry,
		Tokens:   tokens,
		Now:      func() time.Time { return time.Now().UTC() },
		NewRand: func() *rand.Rand {
			seed := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(seed, seed>>1))
		},
	}
}

// Started is what Start and Resume hand back to the caller.
type Started struct {
	Session     *Session
	ResumeToken string
	Resumed     bool
}

// Start begins an evaluation for a student. A student who already has an
// in-progress session on the same evaluation gets that session back
// unchanged.
func (svc *Service) Start(ctx context.Context, evaluationName, studentID string) (Started, error) {
	evaluationName = strings.TrimSpace(evaluationName)
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return Started{}, fmt.Errorf("%w: student id required", exam.ErrInput)
	}
	if evaluationName == "" {
		return Started{}, fmt.Errorf("%w: evaluation name required", exam.ErrInput)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	active, err := svc.Registry.ActiveFor(ctx, studentID)
	switch {
	case err == nil && active.State == InProgress:
		if active.Evaluation.Name != evaluationName {
			return Started{}, fmt.Errorf("%w: student %q is already taking %q", exam.ErrState, studentID, active.Evaluation.Name)
		}
		tok, err := svc.issue(active)
		if err != nil {
			return Started{}, err
		}
		return Started{Session: active, ResumeToken: tok, Resumed: true}, nil
	case err == nil:
		// a finished session the student never left; its result is stored
		// before starting again discards it
		if active.State == Completed && !active.ResultSaved {
			if err := svc.finish(ctx, active); err != nil {
				return Started{}, err
			}
		}
		if err := svc.Registry.Delete(ctx, active.ID); err != nil && !errors.Is(err, exam.ErrNotFound) {
			return Started{}, err
		}
	case !errors.Is(err, exam.ErrNotFound):
		return Started{}, err
	}

	ev, err := svc.Catalog.GetEvaluation(ctx, evaluationName)
	if err != nil {
		return Started{}, err
	}
	n, err := svc.Catalog.CountResults(ctx, studentID, evaluationName)
	if err != nil {
		return Started{}, err
	}
	if ev.Settings.MaxAttempts > 0 && n >= ev.Settings.MaxAttempts {
		return Started{}, fmt.Errorf("%w: %d of %d used", exam.ErrAttemptsExhausted, n, ev.Settings.MaxAttempts)
	}

	s := New(uuid.NewString(), svc.NewRand())
	if err := s.Start(ev, studentID, svc.Now()); err != nil {
		return Started{}, err
	}
	if err := svc.Registry.Put(ctx, s); err != nil {
		return Started{}, err
	}
	if svc.Metrics != nil {
		svc.Metrics.SessionStarted(ev.Name)
	}
	svc.publish(ctx, EventSessionStarted, s.ID, map[string]any{
		"session_id": s.ID, "student_id": studentID, "evaluation_name": ev.Name,
	})
	log.Printf("session %s started: student=%s evaluation=%q questions=%d", s.ID, studentID, ev.Name, len(ev.Questions))

	tok, err := svc.issue(s)
	if err != nil {
		return Started{}, err
	}
	return Started{Session: s, ResumeToken: tok}, nil
}

// Resume returns the live session a resume token points at.
func (svc *Service) Resume(ctx context.Context, token string) (Started, error) {
	if svc.Tokens == nil {
		return Started{}, fmt.Errorf("%w: resume tokens disabled", exam.ErrState)
	}
	claims, err := svc.Tokens.Parse(token)
	if err != nil {
		return Started{}, err
	}
	s, err := svc.Registry.Get(ctx, claims.SessionID)
	if err != nil {
		return Started{}, err
	}
	if s.StudentID != claims.StudentID {
		return Started{}, fmt.Errorf("%w: resume token does not match session", exam.ErrInput)
	}
	return Started{Session: s, ResumeToken: token, Resumed: true}, nil
}

func (svc *Service) Get(ctx context.Context, id string) (*Session, error) {
	return svc.Registry.Get(ctx, id)
}

// Answer records the selected option for the current question. When that
// completes the session the result is scored and stored exactly once.
func (svc *Service) Answer(ctx context.Context, id, selected string) (*Session, exam.Response, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Registry.Get(ctx, id)
	if err != nil {
		return nil, exam.Response{}, err
	}
	resp, err := s.RecordAnswerAndAdvance(selected)
	if err != nil {
		return nil, exam.Response{}, err
	}
	if svc.Metrics != nil {
		svc.Metrics.AnswerRecorded(resp.IsCorrect)
	}
	var finishErr error
	if s.State == Completed {
		finishErr = svc.finish(ctx, s)
	}
	if err := svc.Registry.Put(ctx, s); err != nil {
		return nil, exam.Response{}, err
	}
	if finishErr != nil {
		return s, resp, finishErr
	}
	return s, resp, nil
}

func (svc *Service) Previous(ctx context.Context, id string) (*Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.GoToPrevious(); err != nil {
		return nil, err
	}
	if err := svc.Registry.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Result returns the scored result of a completed session, retrying the
// catalog write if an earlier attempt failed.
func (svc *Service) Result(ctx context.Context, id string) (exam.Result, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Registry.Get(ctx, id)
	if err != nil {
		return exam.Result{}, err
	}
	if s.State != Completed {
		return exam.Result{}, fmt.Errorf("%w: session is %s", exam.ErrState, s.State)
	}
	if !s.ResultSaved {
		if err := svc.finish(ctx, s); err != nil {
			return exam.Result{}, err
		}
		if err := svc.Registry.Put(ctx, s); err != nil {
			return exam.Result{}, err
		}
	}
	return *s.Result, nil
}

// Discard drops a session ("back to menu").
func (svc *Service) Discard(ctx context.Context, id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.Registry.Delete(ctx, id)
}

func (svc *Service) finish(ctx context.Context, s *Session) error {
	res, err := s.Score(svc.Now())
	if err != nil {
		return err
	}
	if s.ResultSaved {
		return nil
	}
	if err := svc.Catalog.SaveResult(ctx, res); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	s.ResultSaved = true
	if svc.Metrics != nil {
		svc.Metrics.SessionCompleted(res, s.Elapsed(res.CompletedAt))
	}
	svc.publish(ctx, EventResultRecorded, res.StudentID, res)
	log.Printf("session %s completed: student=%s evaluation=%q score=%d/%d", s.ID, res.StudentID, res.EvaluationName, res.Score, res.Total)
	return nil
}

func (svc *Service) issue(s *Session) (string, error) {
	if svc.Tokens == nil {
		return "", nil
	}
	return svc.Tokens.Issue(s)
}

func (svc *Service) publish(ctx context.Context, typ, key string, payload any) {
	if svc.Events == nil {
		return
	}
	if err := svc.Events.Publish(ctx, typ, key, payload); err != nil {
		log.Printf("publish %s: %v", typ, err)
	}
}
