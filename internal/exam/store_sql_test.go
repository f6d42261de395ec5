package exam_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mind-engage/edueval/internal/db"
	"github.com/mind-engage/edueval/internal/exam"
)

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sql.Open("sqlite", "file:catalog?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if err := db.EnsureSchema(ctx, conn, db.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	storeContract(t, exam.NewSQLStore(conn, "sqlite"))
}

func TestSQLStore_DuplicateViaRowsAffected(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = exam.NewSQLStore(conn, "postgres").SaveEvaluation(context.Background(), sampleEvaluation("Algorithmique"))
	if !errors.Is(err, exam.ErrDuplicateEvaluation) {
		t.Fatalf("expected ErrDuplicateEvaluation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStore_QueryErrors(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id,evaluation_name")).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results")).
		WithArgs("s1", "Algorithmique").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	s := exam.NewSQLStore(conn, "postgres")
	if _, err := s.ListResults(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected driver error, got %v", err)
	}
	n, err := s.CountResults(context.Background(), "s1", "Algorithmique")
	if err != nil || n != 3 {
		t.Fatalf("CountResults = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStore_InvalidEvaluationNeverHitsDB(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	ev := sampleEvaluation("")
	if err := exam.NewSQLStore(conn, "sqlite").SaveEvaluation(context.Background(), ev); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
