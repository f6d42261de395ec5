package exam

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks caller-correctable input problems.
	ErrInput = errors.New("invalid input")
	// ErrInsufficientMaterial is a legitimate empty outcome, not a failure.
	ErrInsufficientMaterial = errors.New("insufficient material")
	// ErrState is returned when a transition is invoked outside its valid state.
	ErrState = errors.New("invalid state")
	// ErrArithmetic guards scoring an evaluation without questions.
	ErrArithmetic = errors.New("division by zero")
	ErrNotFound   = errors.New("not found")

	ErrDuplicateEvaluation = fmt.Errorf("%w: evaluation name already exists", ErrInput)
	ErrAttemptsExhausted   = fmt.Errorf("%w: maximum attempts reached", ErrInput)
)

// Validate checks the invariants an Evaluation must satisfy before it is saved.
func (e Evaluation) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: evaluation name required", ErrInput)
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("%w: evaluation needs at least one question", ErrInput)
	}
	for i, q := range e.Questions {
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("%w: question %d must have %d options, got %d", ErrInput, i+1, OptionsPerQuestion, len(q.Options))
		}
		if q.CorrectOptionIndex < 1 || q.CorrectOptionIndex > len(q.Options) {
			return fmt.Errorf("%w: question %d has no valid correct option", ErrInput, i+1)
		}
	}
	s := e.Settings
	if s.SecondsPerQuestion < MinSecondsPerQuestion || s.SecondsPerQuestion > MaxSecondsPerQuestion {
		return fmt.Errorf("%w: time per question must be in [%d,%d]", ErrInput, MinSecondsPerQuestion, MaxSecondsPerQuestion)
	}
	if s.MaxAttempts < MinAttempts || s.MaxAttempts > MaxAttempts {
		return fmt.Errorf("%w: max attempts must be in [%d,%d]", ErrInput, MinAttempts, MaxAttempts)
	}
	return nil
}
