package grading

import (
	"errors"
	"fmt"

	"github.com/mind-engage/edueval/internal/exam"
)

var ErrUnsupportedType = errors.New("no grading strategy for question type")

// Strategy grades a single question response.
type Strategy interface {
	Grade(q exam.Question, selected string) (bool, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q exam.Question, selected string) (bool, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q exam.Question, selected string) (bool, error) {
	typ := q.Type
	if typ == "" {
		typ = exam.TypeQCM
	}
	s, ok := g.strategies[typ]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedType, q.Type)
	}
	return s.Grade(q, selected)
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			exam.TypeQCM: qcmStrategy{},
		},
	}
}

// qcmStrategy compares the selected option text against the option the
// 1-based correct index points at.
type qcmStrategy struct{}

func (qcmStrategy) Grade(q exam.Question, selected string) (bool, error) {
	want := q.CorrectAnswer()
	if want == "" {
		return false, fmt.Errorf("%w: question has no valid correct option", exam.ErrInput)
	}
	return selected == want, nil
}
