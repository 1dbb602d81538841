package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/errgroup"
	"quizboard/internal/domain"
)

// QuizLoader reads quizzes and their questions straight from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

// LoadQuiz fetches the quiz row and its questions concurrently.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		questions []domain.Question
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = l.loadQuizRow(gctx, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = l.loadQuestions(gctx, quizID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Quiz{}, err
	}

	quiz.Questions = questions
	return quiz, nil
}

func (l *QuizLoader) loadQuizRow(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz       domain.Quiz
		difficulty string
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, title, description, difficulty, time_limit_seconds, question_count, created_at
		   FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.Description, &difficulty, &quiz.TimeLimitSeconds, &quiz.QuestionCount, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Difficulty = domain.Difficulty(difficulty)
	quiz.CreatedAt = quiz.CreatedAt.UTC()
	return quiz, nil
}

func (l *QuizLoader) loadQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, "position", "text", options, correct_option
		   FROM questions WHERE quiz_id=$1 ORDER BY "position"`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Position, &q.Text, &raw, &q.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
