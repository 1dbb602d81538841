package app

import (
	"context"

	"github.com/google/uuid"
	"quizboard/internal/domain"
)

// SessionRepository abstracts where live quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	List() []*Session
}

// QuizRepository loads full quiz content, questions included (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCatalog lists quizzes for browsing.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuizService contains the participant-facing quiz use cases.
type QuizService struct {
	sessions    SessionRepository
	quizzes     QuizRepository
	catalog     QuizCatalog
	results     ResultStore
	submitter   Submitter
	sessionOpts []SessionOption
	newID       func() string
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, catalog QuizCatalog, results ResultStore, submitter Submitter, opts ...SessionOption) *QuizService {
	return &QuizService{
		sessions:    store,
		quizzes:     quizzes,
		catalog:     catalog,
		results:     results,
		submitter:   submitter,
		sessionOpts: opts,
		newID:       uuid.NewString,
	}
}

// ListQuizzes returns every quiz, newest first, without questions.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.WrapBackend("list quizzes", err)
	}
	return quizzes, nil
}

// GetQuiz returns the quiz with its questions in display order.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.WrapBackend("fetch quiz", err)
	}
	return quiz, nil
}

// StartSession loads the quiz and registers a new session waiting for the
// participant's identity.
func (s *QuizService) StartSession(ctx context.Context, quizID string) (*Session, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(s.newID(), quiz, quiz.Questions, s.submitter, s.sessionOpts...)
	if err != nil {
		return nil, err
	}
	s.sessions.Add(session)
	return session, nil
}

// Session looks up a live session.
func (s *QuizService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// EndSession closes a session and forgets it. Unknown IDs are ignored.
func (s *QuizService) EndSession(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// LeaderboardEntry is one ranked attempt.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	ResultID   string `json:"resultId"`
	UserName   string `json:"userName"`
	Score      int    `json:"score"`
	Total      int    `json:"totalQuestions"`
	Percentage int    `json:"percentage"`
	TimeTaken  string `json:"timeTaken"`
}

// Leaderboard is the ranked view of every attempt at one quiz.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	QuizTitle string             `json:"quizTitle"`
	Entries   []LeaderboardEntry `json:"entries"`
	Stats     LeaderboardStats   `json:"stats"`
}

// Leaderboard ranks every stored result for quizID.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) (Leaderboard, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return Leaderboard{}, err
	}
	results, err := s.results.ListResults(ctx, quizID)
	if err != nil {
		return Leaderboard{}, domain.WrapBackend("fetch results", err)
	}

	ranked := RankResults(results)
	entries := make([]LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		taken, _ := r.TimeTaken()
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			ResultID:   r.ID,
			UserName:   r.UserName,
			Score:      r.Score,
			Total:      r.TotalQuestions,
			Percentage: r.Percentage,
			TimeTaken:  FormatClock(taken),
		})
	}
	return Leaderboard{
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
		Entries:   entries,
		Stats:     Summarize(ranked),
	}, nil
}

// Report loads a result and its quiz and derives the display figures.
func (s *QuizService) Report(ctx context.Context, resultID string) (Report, error) {
	result, err := s.results.GetResult(ctx, resultID)
	if err != nil {
		return Report{}, domain.WrapBackend("fetch result", err)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, result.QuizID)
	if err != nil {
		return Report{}, domain.WrapBackend("fetch quiz", err)
	}
	return AssembleReport(result, quiz), nil
}
