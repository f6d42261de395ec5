package grading

import (
	"fmt"
	"time"

	"github.com/mind-engage/edueval/internal/exam"
)

// Score aggregates recorded responses into a Result. Responses are indexed
// against ev.Questions. It is a pure function of its inputs.
func Score(ev exam.Evaluation, responses []exam.Response, studentID string, completedAt time.Time) (exam.Result, error) {
	total := len(ev.Questions)
	if total == 0 {
		return exam.Result{}, fmt.Errorf("%w: evaluation %q has no questions", exam.ErrArithmetic, ev.Name)
	}
	score := 0
	items := make([]exam.ResultItem, 0, len(responses))
	for _, r := range responses {
		if r.IsCorrect {
			score++
		}
		item := exam.ResultItem{Selected: r.SelectedOption, IsCorrect: r.IsCorrect}
		if r.QuestionIndex >= 0 && r.QuestionIndex < total {
			q := ev.Questions[r.QuestionIndex]
			item.Question = q.Text
			item.CorrectAnswer = q.CorrectAnswer()
		}
		items = append(items, item)
	}
	return exam.Result{
		StudentID:      studentID,
		EvaluationName: ev.Name,
		Score:          score,
		Total:          total,
		Percentage:     100 * float64(score) / float64(total),
		CompletedAt:    completedAt,
		Items:          items,
	}, nil
}
