package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizboard/internal/app"
	"quizboard/internal/domain"
	"quizboard/internal/infra/memory"
)

type okSubmitter struct{}

func (okSubmitter) Submit(_ context.Context, sub app.Submission) (domain.Result, error) {
	return domain.Result{ID: "r-" + sub.Identity.Name}, nil
}

func newSession(t *testing.T, id string, now func() time.Time) *app.Session {
	t.Helper()
	quiz := domain.Quiz{ID: "quiz-1", Title: "Basics"}
	questions := []domain.Question{{ID: "q1", Text: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1}}
	s, err := app.NewSession(id, quiz, questions, okSubmitter{}, app.WithClock(now))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSweepRemovesFinishedAndIdleSessions(t *testing.T) {
	base := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	current := base
	now := func() time.Time { return current }

	store := memory.NewSessionStore()
	finished := newSession(t, "finished", now)
	idle := newSession(t, "idle", now)
	store.Add(finished)
	store.Add(idle)

	if _, err := finished.Begin(domain.Identity{Name: "ann", Email: "ann@example.com"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := finished.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	current = base.Add(10 * time.Minute)
	active := newSession(t, "active", now)
	store.Add(active)

	sweeper := NewSessionSweeper(store, 5*time.Minute)
	sweeper.clock = now

	if got := sweeper.Sweep(); got != 2 {
		t.Fatalf("expected 2 sessions swept, got %d", got)
	}
	if _, ok := store.Get("active"); !ok {
		t.Fatalf("expected active session to survive")
	}
	if _, ok := store.Get("idle"); ok {
		t.Fatalf("expected idle session removed")
	}
	if _, ok := store.Get("finished"); ok {
		t.Fatalf("expected finished session removed")
	}
}

type stalledTicker struct{}

func (stalledTicker) C() <-chan time.Time { return nil }
func (stalledTicker) Stop()               {}

func TestSweepKeepsTimedSessionWithTimeLeft(t *testing.T) {
	base := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	current := base
	now := func() time.Time { return current }

	quiz := domain.Quiz{ID: "quiz-1", Title: "Long exam", TimeLimitSeconds: 3600}
	questions := []domain.Question{{ID: "q1", Text: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1}}
	session, err := app.NewSession("timed", quiz, questions, okSubmitter{},
		app.WithClock(now),
		app.WithTicker(func(time.Duration) app.Ticker { return stalledTicker{} }))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	store := memory.NewSessionStore()
	store.Add(session)
	if _, err := session.Begin(domain.Identity{Name: "ann", Email: "ann@example.com"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := session.SelectAnswer(1); err != nil {
		t.Fatalf("answer: %v", err)
	}

	current = base.Add(31 * time.Minute)
	sweeper := NewSessionSweeper(store, 30*time.Minute)
	sweeper.clock = now

	if got := sweeper.Sweep(); got != 0 {
		t.Fatalf("expected running countdown to be kept, swept %d", got)
	}
	if _, ok := store.Get("timed"); !ok {
		t.Fatalf("expected timed session to stay registered")
	}
	if snap := session.Snapshot(); snap.State != app.StateInProgress || snap.RemainingSeconds != 3600 {
		t.Fatalf("expected untouched attempt, got %+v", snap)
	}
}

func TestSweepKeepsFinishedSessionDuringGrace(t *testing.T) {
	base := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	current := base
	now := func() time.Time { return current }

	store := memory.NewSessionStore()
	finished := newSession(t, "finished", now)
	store.Add(finished)
	finished.Begin(domain.Identity{Name: "ann", Email: "ann@example.com"})
	if _, err := finished.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	sweeper := NewSessionSweeper(store, 30*time.Minute)
	sweeper.clock = now

	current = base.Add(time.Minute)
	if got := sweeper.Sweep(); got != 0 {
		t.Fatalf("expected finished session kept during grace, swept %d", got)
	}
	if _, err := finished.Submit(context.Background()); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected repeated submit to report the stored result, got %v", err)
	}

	current = base.Add(FinishedGrace + time.Second)
	if got := sweeper.Sweep(); got != 1 {
		t.Fatalf("expected finished session swept after grace, got %d", got)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sweeper := NewSessionSweeper(memory.NewSessionStore(), time.Minute)
	if err := sweeper.Start("not a schedule"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
	sweeper.Stop()
}
