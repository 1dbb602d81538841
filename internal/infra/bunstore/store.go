package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"quizboard/internal/domain"
)

// Store persists quizzes, questions and results through bun. It works against
// both the Postgres and SQLite dialects.
type Store struct {
	db    *bun.DB
	clock func() time.Time
	newID func() string
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, clock: time.Now, newID: uuid.NewString}
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []QuizRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at DESC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var row QuizRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", quizID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var questions []QuestionRow
	if err := s.db.NewSelect().Model(&questions).Where("quiz_id = ?", quizID).Order("position ASC").Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}

	quiz := row.toDomain()
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, q.toDomain())
	}
	return quiz, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = s.clock().UTC()
	}
	row := quizRowFrom(quiz)
	questions := s.questionRows(quiz)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, questions)
	})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return s.LoadQuiz(ctx, quiz.ID)
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := quizRowFrom(quiz)
	questions := s.questionRows(quiz)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(&row).
			Column("title", "description", "difficulty", "time_limit_seconds", "question_count").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewDelete().Model((*QuestionRow)(nil)).Where("quiz_id = ?", quiz.ID).Exec(ctx); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, questions)
	})
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, err
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	return s.LoadQuiz(ctx, quiz.ID)
}

func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*QuestionRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*QuizRow)(nil)).Where("id = ?", quizID).Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrQuizNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrQuizNotFound) {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return err
}

func (s *Store) questionRows(quiz domain.Quiz) []QuestionRow {
	rows := make([]QuestionRow, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		id := q.ID
		if id == "" {
			id = s.newID()
		}
		rows = append(rows, QuestionRow{
			ID:            id,
			QuizID:        quiz.ID,
			Position:      i,
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}
	return rows
}

func insertQuestions(ctx context.Context, tx bun.Tx, rows []QuestionRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (s *Store) CreateResult(ctx context.Context, input domain.ResultInput) (domain.Result, error) {
	row := ResultRow{
		ID:               s.newID(),
		QuizID:           input.QuizID,
		UserName:         input.UserName,
		UserEmail:        input.UserEmail,
		Score:            input.Score,
		TotalQuestions:   input.TotalQuestions,
		Percentage:       input.Percentage,
		Answers:          input.Answers,
		TimeTakenSeconds: input.TimeTakenSeconds,
		CreatedAt:        s.clock().UTC(),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("insert result: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetResult(ctx context.Context, resultID string) (domain.Result, error) {
	var row ResultRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", resultID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("get result: %w", err)
	}
	return row.toDomain(), nil
}

// ListResults returns results for quizID in creation order.
func (s *Store) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	var rows []ResultRow
	err := s.db.NewSelect().Model(&rows).Where("quiz_id = ?", quizID).Order("created_at ASC", "id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.Result, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteResult(ctx context.Context, resultID string) error {
	res, err := s.db.NewDelete().Model((*ResultRow)(nil)).Where("id = ?", resultID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrResultNotFound
	}
	return nil
}

func (s *Store) DeleteResultsByQuiz(ctx context.Context, quizID string) (int, error) {
	res, err := s.db.NewDelete().Model((*ResultRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
