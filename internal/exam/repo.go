package exam

import "context"

// Store is the evaluation catalog. Storage is append-only: there are no
// update or delete operations.
type Store interface {
	SaveEvaluation(ctx context.Context, e Evaluation) error
	ListEvaluations(ctx context.Context) ([]Evaluation, error)
	GetEvaluation(ctx context.Context, name string) (Evaluation, error)

	SaveResult(ctx context.Context, r Result) error
	ListResults(ctx context.Context) ([]Result, error)
	// CountResults is used to enforce Settings.MaxAttempts.
	CountResults(ctx context.Context, studentID, evaluationName string) (int, error)
}
