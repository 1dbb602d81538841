package bunstore

import (
	"time"

	"github.com/uptrace/bun"
	"quizboard/internal/domain"
)

// QuizRow is the quizzes table.
type QuizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID               string    `bun:"id,pk"`
	Title            string    `bun:"title,notnull"`
	Description      string    `bun:"description,notnull"`
	Difficulty       string    `bun:"difficulty,notnull"`
	TimeLimitSeconds int       `bun:"time_limit_seconds,notnull"`
	QuestionCount    int       `bun:"question_count,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

// QuestionRow is the questions table. Options are stored as a JSON array.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID            string   `bun:"id,pk"`
	QuizID        string   `bun:"quiz_id,notnull"`
	Position      int      `bun:"position,notnull"`
	Text          string   `bun:"text,notnull"`
	Options       []string `bun:"options,notnull"`
	CorrectOption int      `bun:"correct_option,notnull"`
}

// ResultRow is the results table. A NULL time means none was recorded.
type ResultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID               string    `bun:"id,pk"`
	QuizID           string    `bun:"quiz_id,notnull"`
	UserName         string    `bun:"user_name,notnull"`
	UserEmail        string    `bun:"user_email,notnull"`
	Score            int       `bun:"score,notnull"`
	TotalQuestions   int       `bun:"total_questions,notnull"`
	Percentage       int       `bun:"percentage,notnull"`
	Answers          string    `bun:"answers,notnull"`
	TimeTakenSeconds *int      `bun:"time_taken_seconds"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

func quizRowFrom(q domain.Quiz) QuizRow {
	return QuizRow{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Difficulty:       string(q.Difficulty),
		TimeLimitSeconds: q.TimeLimitSeconds,
		QuestionCount:    len(q.Questions),
		CreatedAt:        q.CreatedAt,
	}
}

func (r QuizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Difficulty:       domain.Difficulty(r.Difficulty),
		TimeLimitSeconds: r.TimeLimitSeconds,
		QuestionCount:    r.QuestionCount,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

func (r QuestionRow) toDomain() domain.Question {
	return domain.Question{
		ID:            r.ID,
		QuizID:        r.QuizID,
		Position:      r.Position,
		Text:          r.Text,
		Options:       r.Options,
		CorrectOption: r.CorrectOption,
	}
}

func (r ResultRow) toDomain() domain.Result {
	return domain.Result{
		ID: r.ID,
		ResultInput: domain.ResultInput{
			QuizID:           r.QuizID,
			UserName:         r.UserName,
			UserEmail:        r.UserEmail,
			Score:            r.Score,
			TotalQuestions:   r.TotalQuestions,
			Percentage:       r.Percentage,
			Answers:          r.Answers,
			TimeTakenSeconds: r.TimeTakenSeconds,
		},
		Timestamp: r.CreatedAt.UTC(),
	}
}
