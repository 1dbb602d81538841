package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizboard/internal/domain"
)

func TestStoreQuizLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	older := sampleQuiz()
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleQuiz()
	newer.ID = "quiz-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	if _, err := store.CreateQuiz(ctx, older); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateQuiz(ctx, newer); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, _ := store.ListQuizzes(ctx)
	if len(list) != 2 || list[0].ID != "quiz-2" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	loaded, err := store.LoadQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.QuestionCount != 2 || loaded.Questions[1].Position != 1 || loaded.Questions[1].QuizID != "quiz-1" {
		t.Fatalf("unexpected questions: %+v", loaded.Questions)
	}

	loaded.Questions = loaded.Questions[:1]
	updated, err := store.UpdateQuiz(ctx, loaded)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.QuestionCount != 1 || len(updated.Questions) != 1 {
		t.Fatalf("expected questions replaced, got %+v", updated)
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStoreResults(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	a, _ := store.CreateResult(ctx, domain.ResultInput{QuizID: "quiz-1", UserName: "Alice", Percentage: 50})
	_, _ = store.CreateResult(ctx, domain.ResultInput{QuizID: "quiz-1", UserName: "Bob", Percentage: 75})
	_, _ = store.CreateResult(ctx, domain.ResultInput{QuizID: "quiz-2", UserName: "Carol", Percentage: 90})

	if a.ID == "" || a.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", a)
	}
	got, err := store.GetResult(ctx, a.ID)
	if err != nil || got.UserName != "Alice" {
		t.Fatalf("get result: %+v %v", got, err)
	}

	results, _ := store.ListResults(ctx, "quiz-1")
	if len(results) != 2 || results[0].UserName != "Alice" {
		t.Fatalf("expected insertion order, got %+v", results)
	}

	if err := store.DeleteResult(ctx, a.ID); err != nil {
		t.Fatalf("delete result: %v", err)
	}
	if _, err := store.GetResult(ctx, a.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	n, _ := store.DeleteResultsByQuiz(ctx, "quiz-1")
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	remaining, _ := store.ListResults(ctx, "quiz-2")
	if len(remaining) != 1 {
		t.Fatalf("expected other quiz untouched, got %d", len(remaining))
	}
}
