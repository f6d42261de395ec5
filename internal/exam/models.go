package exam

import "time"

// TypeQCM is the only question type the generator produces.
const TypeQCM = "qcm"

// OptionsPerQuestion is the fixed number of choices on every question.
const OptionsPerQuestion = 4

const (
	MinSecondsPerQuestion = 30
	MaxSecondsPerQuestion = 300
	MinAttempts           = 1
	MaxAttempts           = 5
)

type Question struct {
	Text               string   `json:"question"`
	Type               string   `json:"type"`
	Concept            string   `json:"concept,omitempty"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct,omitempty"` // 1-based; 0 when stripped for students
}

// CorrectAnswer returns the option text CorrectOptionIndex points at, or ""
// when the index is out of range (e.g. keys stripped).
func (q Question) CorrectAnswer() string {
	if q.CorrectOptionIndex < 1 || q.CorrectOptionIndex > len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectOptionIndex-1]
}

type Settings struct {
	SecondsPerQuestion   int  `json:"time_per_question"`
	ShuffleQuestions     bool `json:"shuffle_questions"`
	ShowImmediateResults bool `json:"show_results"`
	MaxAttempts          int  `json:"max_attempts"`
}

// DefaultSettings mirrors the authoring form defaults.
func DefaultSettings() Settings {
	return Settings{
		SecondsPerQuestion:   60,
		ShuffleQuestions:     true,
		ShowImmediateResults: true,
		MaxAttempts:          1,
	}
}

type Evaluation struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	Settings  Settings   `json:"settings"`
	CreatedAt time.Time  `json:"created_at"`
}

// WithoutKeys returns a copy safe to hand to test-takers.
func (e Evaluation) WithoutKeys() Evaluation {
	qs := make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		q.Options = append([]string(nil), q.Options...)
		q.CorrectOptionIndex = 0
		qs[i] = q
	}
	e.Questions = qs
	return e
}

type Response struct {
	QuestionIndex  int    `json:"question_idx"`
	SelectedOption string `json:"selected"`
	IsCorrect      bool   `json:"correct"`
}

// ResultItem is the per-question detail of a scored session.
type ResultItem struct {
	Question      string `json:"question"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"correct"`
}

type Result struct {
	StudentID      string       `json:"student_id"`
	EvaluationName string       `json:"evaluation_name"`
	Score          int          `json:"score"`
	Total          int          `json:"total"`
	Percentage     float64      `json:"percentage"`
	CompletedAt    time.Time    `json:"completed_at"`
	Items          []ResultItem `json:"items,omitempty"`
}
