package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/mind-engage/edueval/internal/exam"
)

// Registry keeps at most one live session per student.
type Registry interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	ActiveFor(ctx context.Context, studentID string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryRegistry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	byStudent map[string]string
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		sessions:  map[string]*Session{},
		byStudent: map[string]string{},
	}
}

func (m *memoryRegistry) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.byStudent[s.StudentID]; ok && prev != s.ID {
		delete(m.sessions, prev)
	}
	m.sessions[s.ID] = s.clone()
	m.byStudent[s.StudentID] = s.ID
	return nil
}

func (m *memoryRegistry) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", exam.ErrNotFound, id)
	}
	return s.clone(), nil
}

func (m *memoryRegistry) ActiveFor(_ context.Context, studentID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byStudent[studentID]
	if !ok {
		return nil, fmt.Errorf("%w: no session for %q", exam.ErrNotFound, studentID)
	}
	return m.sessions[id].clone(), nil
}

func (m *memoryRegistry) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %q", exam.ErrNotFound, id)
	}
	delete(m.sessions, id)
	if m.byStudent[s.StudentID] == id {
		delete(m.byStudent, s.StudentID)
	}
	return nil
}
