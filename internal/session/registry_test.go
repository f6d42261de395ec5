package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/edueval/internal/exam"
)

func registryContract(t *testing.T, reg Registry) {
	t.Helper()
	ctx := context.Background()
	student := "student-" + uuid.NewString()

	first := New(uuid.NewString(), nil)
	if err := first.Start(threeQuestionEval(), student, time.Unix(1000, 0).UTC()); err != nil {
		t.Fatal(err)
	}
	if err := reg.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first.RecordAnswerAndAdvance("a") // not persisted

	got, err := reg.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CurrentIndex != 0 || len(got.Responses) != 0 || got.State != InProgress {
		t.Fatalf("registry must hold a snapshot: %+v", got)
	}
	active, err := reg.ActiveFor(ctx, student)
	if err != nil || active.ID != first.ID {
		t.Fatalf("ActiveFor = %v, %v", active, err)
	}

	second := New(uuid.NewString(), nil)
	second.Start(threeQuestionEval(), student, time.Unix(2000, 0).UTC())
	if err := reg.Put(ctx, second); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := reg.Get(ctx, first.ID); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("one live session per student: old session still present (%v)", err)
	}
	if active, _ := reg.ActiveFor(ctx, student); active == nil || active.ID != second.ID {
		t.Fatalf("ActiveFor should point at the newest session")
	}

	if err := reg.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := reg.ActiveFor(ctx, student); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := reg.Delete(ctx, second.ID); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMemoryRegistry(t *testing.T) {
	registryContract(t, NewMemoryRegistry())
}

func TestRedisRegistry(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	reg := NewRedisRegistry(addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	if err := reg.Ping(context.Background()); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	registryContract(t, reg)
}

func TestTokens(t *testing.T) {
	tok := NewTokens("secret", time.Minute)
	now := time.Unix(10_000, 0)
	tok.now = func() time.Time { return now }

	s := New("sess-1", nil)
	s.Start(threeQuestionEval(), "alice", now)
	raw, err := tok.Issue(s)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := tok.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.SessionID != "sess-1" || c.StudentID != "alice" || c.EvaluationName != "Algorithmique" {
		t.Fatalf("unexpected claims %+v", c)
	}

	now = now.Add(2 * time.Minute)
	if _, err := tok.Parse(raw); !errors.Is(err, exam.ErrInput) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
