package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) SaveEvaluation(ctx context.Context, e Evaluation) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = cloneEvaluation(e)
	prepare(&e)
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	sj, err := json.Marshal(e.Settings)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO evaluations (id,name,questions_json,settings_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (name) DO NOTHING`,
		e.ID, e.Name, string(qj), string(sj), e.CreatedAt.Unix())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateEvaluation, e.Name)
	}
	return nil
}

func (s *SQLStore) ListEvaluations(ctx context.Context) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,questions_json,settings_json,created_at FROM evaluations ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetEvaluation(ctx context.Context, name string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,questions_json,settings_json,created_at FROM evaluations WHERE name=$1`, name)
	e, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, fmt.Errorf("%w: evaluation %q", ErrNotFound, name)
		}
		return Evaluation{}, err
	}
	return e, nil
}

func (s *SQLStore) SaveResult(ctx context.Context, r Result) error {
	ij, err := json.Marshal(r.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (student_id,evaluation_name,score,total,percentage,items_json,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.StudentID, r.EvaluationName, r.Score, r.Total, r.Percentage, string(ij), r.CompletedAt.Unix())
	return err
}

func (s *SQLStore) ListResults(ctx context.Context) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT student_id,evaluation_name,score,total,percentage,items_json,completed_at FROM results ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		var ijson string
		var completed int64
		if err := rows.Scan(&r.StudentID, &r.EvaluationName, &r.Score, &r.Total, &r.Percentage, &ijson, &completed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ijson), &r.Items); err != nil {
			r.Items = nil
		}
		r.CompletedAt = time.Unix(completed, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountResults(ctx context.Context, studentID, evaluationName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE student_id=$1 AND evaluation_name=$2`,
		studentID, evaluationName).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(sc scanner) (Evaluation, error) {
	var e Evaluation
	var qjson, sjson string
	var created int64
	if err := sc.Scan(&e.ID, &e.Name, &qjson, &sjson, &created); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(sjson), &e.Settings); err != nil {
		return Evaluation{}, err
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}
