package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"quizboard/internal/domain"
)

// Store keeps quizzes, questions and results in process memory. It backs the
// service when no database is configured and doubles as a test fixture.
type Store struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	questions map[string][]domain.Question
	results   []domain.Result
	clock     func() time.Time
	newID     func() string
}

func NewStore() *Store {
	return &Store{
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string][]domain.Question),
		clock:     time.Now,
		newID:     uuid.NewString,
	}
}

// NewSeededStore returns a store preloaded with quizzes (questions included).
func NewSeededStore(quizzes ...domain.Quiz) *Store {
	s := NewStore()
	for _, q := range quizzes {
		_, _ = s.CreateQuiz(context.Background(), q)
	}
	return s
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = append([]domain.Question(nil), s.questions[quizID]...)
	return quiz, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = s.clock().UTC()
	}
	s.putLocked(quiz)
	return s.quizLocked(quiz.ID), nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	s.putLocked(quiz)
	return s.quizLocked(quiz.ID), nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	delete(s.questions, quizID)
	return nil
}

func (s *Store) putLocked(quiz domain.Quiz) {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if q.ID == "" {
			q.ID = s.newID()
		}
		q.QuizID = quiz.ID
		q.Position = i
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	quiz.QuestionCount = len(questions)
	quiz.Questions = nil
	s.quizzes[quiz.ID] = quiz
	s.questions[quiz.ID] = questions
}

func (s *Store) quizLocked(quizID string) domain.Quiz {
	quiz := s.quizzes[quizID]
	quiz.Questions = append([]domain.Question(nil), s.questions[quizID]...)
	return quiz
}

func (s *Store) CreateResult(_ context.Context, input domain.ResultInput) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := domain.Result{
		ID:          s.newID(),
		ResultInput: input,
		Timestamp:   s.clock().UTC(),
	}
	s.results = append(s.results, result)
	return result, nil
}

func (s *Store) GetResult(_ context.Context, resultID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == resultID {
			return r, nil
		}
	}
	return domain.Result{}, domain.ErrResultNotFound
}

// ListResults returns results for quizID in insertion order.
func (s *Store) ListResults(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0)
	for _, r := range s.results {
		if r.QuizID == quizID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) DeleteResult(_ context.Context, resultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.results {
		if r.ID == resultID {
			s.results = append(s.results[:i], s.results[i+1:]...)
			return nil
		}
	}
	return domain.ErrResultNotFound
}

func (s *Store) DeleteResultsByQuiz(_ context.Context, quizID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.results[:0]
	removed := 0
	for _, r := range s.results {
		if r.QuizID == quizID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.results = kept
	return removed, nil
}
