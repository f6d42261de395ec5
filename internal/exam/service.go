package exam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu          sync.RWMutex
	evaluations []Evaluation
	results     []Result
}

func NewInMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) SaveEvaluation(_ context.Context, e Evaluation) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.evaluations {
		if x.Name == e.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateEvaluation, e.Name)
		}
	}
	e = cloneEvaluation(e)
	prepare(&e)
	m.evaluations = append(m.evaluations, e)
	return nil
}

func (m *memoryStore) ListEvaluations(_ context.Context) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Evaluation, len(m.evaluations))
	for i, e := range m.evaluations {
		out[i] = cloneEvaluation(e)
	}
	return out, nil
}

func (m *memoryStore) GetEvaluation(_ context.Context, name string) (Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.evaluations {
		if e.Name == name {
			return cloneEvaluation(e), nil
		}
	}
	return Evaluation{}, fmt.Errorf("%w: evaluation %q", ErrNotFound, name)
}

func (m *memoryStore) SaveResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Items = append([]ResultItem(nil), r.Items...)
	m.results = append(m.results, r)
	return nil
}

func (m *memoryStore) ListResults(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, len(m.results))
	for i, r := range m.results {
		r.Items = append([]ResultItem(nil), r.Items...)
		out[i] = r
	}
	return out, nil
}

func (m *memoryStore) CountResults(_ context.Context, studentID, evaluationName string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.results {
		if r.StudentID == studentID && r.EvaluationName == evaluationName {
			n++
		}
	}
	return n, nil
}

// prepare fills the fields the catalog owns.
func prepare(e *Evaluation) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	for i := range e.Questions {
		if e.Questions[i].Type == "" {
			e.Questions[i].Type = TypeQCM
		}
	}
}

func cloneEvaluation(e Evaluation) Evaluation {
	qs := make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	e.Questions = qs
	return e
}
