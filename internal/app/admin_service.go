package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"quizboard/internal/domain"
)

// QuizStore is the write side of quiz content.
type QuizStore interface {
	QuizCatalog
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	// UpdateQuiz replaces the quiz fields and all of its questions.
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	// DeleteQuiz removes the quiz and its questions.
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizCache drops cached quiz content after writes.
type QuizCache interface {
	Invalidate(ctx context.Context, quizID string) error
}

// QuestionInput is one question as entered in the admin panel.
type QuestionInput struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectOption int      `json:"correctOption" validate:"min=0,max=3"`
}

// QuizInput is the admin payload for creating or updating a quiz.
type QuizInput struct {
	Title            string          `json:"title" validate:"required"`
	Description      string          `json:"description" validate:"required"`
	Difficulty       string          `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	TimeLimitSeconds int             `json:"timeLimitSeconds" validate:"gte=0"`
	Questions        []QuestionInput `json:"questions" validate:"min=1,dive"`
}

// AdminService implements the authenticated quiz management use cases.
type AdminService struct {
	quizzes QuizStore
	results ResultStore
	cache   QuizCache
	clock   func() time.Time
	newID   func() string
}

func NewAdminService(quizzes QuizStore, results ResultStore, cache QuizCache) *AdminService {
	return &AdminService{
		quizzes: quizzes,
		results: results,
		cache:   cache,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
}

// CreateQuiz validates input and stores a new quiz with its questions.
func (s *AdminService) CreateQuiz(ctx context.Context, in QuizInput) (domain.Quiz, error) {
	in = normalizeQuizInput(in)
	if err := validateStruct(in); err != nil {
		return domain.Quiz{}, err
	}
	quiz := s.buildQuiz(s.newID(), s.clock().UTC(), in)
	created, err := s.quizzes.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, domain.WrapBackend("create quiz", err)
	}
	log.Printf("quiz %s created with %d questions", created.ID, created.QuestionCount)
	return created, nil
}

// UpdateQuiz replaces the quiz fields and all of its questions.
func (s *AdminService) UpdateQuiz(ctx context.Context, quizID string, in QuizInput) (domain.Quiz, error) {
	in = normalizeQuizInput(in)
	if err := validateStruct(in); err != nil {
		return domain.Quiz{}, err
	}
	existing, err := s.quizzes.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.WrapBackend("fetch quiz", err)
	}
	updated, err := s.quizzes.UpdateQuiz(ctx, s.buildQuiz(existing.ID, existing.CreatedAt, in))
	if err != nil {
		return domain.Quiz{}, domain.WrapBackend("update quiz", err)
	}
	s.invalidate(ctx, quizID)
	return updated, nil
}

// DeleteQuiz removes a quiz and its questions. Results are kept until cleared.
func (s *AdminService) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return domain.WrapBackend("delete quiz", err)
	}
	s.invalidate(ctx, quizID)
	return nil
}

// ListResults returns the raw results for quizID in store order.
func (s *AdminService) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	results, err := s.results.ListResults(ctx, quizID)
	if err != nil {
		return nil, domain.WrapBackend("fetch results", err)
	}
	return results, nil
}

// ClearResults deletes every result recorded for quizID.
func (s *AdminService) ClearResults(ctx context.Context, quizID string) (int, error) {
	n, err := s.results.DeleteResultsByQuiz(ctx, quizID)
	if err != nil {
		return 0, domain.WrapBackend("clear results", err)
	}
	log.Printf("cleared %d results for quiz %s", n, quizID)
	return n, nil
}

// DeleteResult removes a single result.
func (s *AdminService) DeleteResult(ctx context.Context, resultID string) error {
	if err := s.results.DeleteResult(ctx, resultID); err != nil {
		return domain.WrapBackend("delete result", err)
	}
	return nil
}

func (s *AdminService) invalidate(ctx context.Context, quizID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		log.Printf("invalidate quiz %s: %v", quizID, err)
	}
}

func (s *AdminService) buildQuiz(id string, createdAt time.Time, in QuizInput) domain.Quiz {
	questions := make([]domain.Question, 0, len(in.Questions))
	for i, q := range in.Questions {
		questions = append(questions, domain.Question{
			ID:            s.newID(),
			QuizID:        id,
			Position:      i,
			Text:          q.Text,
			Options:       append([]string(nil), q.Options...),
			CorrectOption: q.CorrectOption,
		})
	}
	return domain.Quiz{
		ID:               id,
		Title:            in.Title,
		Description:      in.Description,
		Difficulty:       domain.Difficulty(in.Difficulty),
		TimeLimitSeconds: in.TimeLimitSeconds,
		QuestionCount:    len(questions),
		CreatedAt:        createdAt,
		Questions:        questions,
	}
}

func normalizeQuizInput(in QuizInput) QuizInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Difficulty == "" {
		in.Difficulty = string(domain.DifficultyEasy)
	}
	questions := make([]QuestionInput, len(in.Questions))
	for i, q := range in.Questions {
		q.Text = strings.TrimSpace(q.Text)
		opts := make([]string, len(q.Options))
		for j, o := range q.Options {
			opts[j] = strings.TrimSpace(o)
		}
		q.Options = opts
		questions[i] = q
	}
	in.Questions = questions
	return in
}
