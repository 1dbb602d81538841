package app

import (
	"context"
	"log"
	"math"

	"quizboard/internal/domain"
)

// Score is the outcome of grading one answer set.
type Score struct {
	Correct    int `json:"score"`
	Total      int `json:"totalQuestions"`
	Percentage int `json:"percentage"`
}

// ScoreAnswers grades answers against the question set used to render the quiz.
// A missing answer counts as incorrect. An empty question set is a precondition
// violation.
func ScoreAnswers(answers domain.AnswerSet, questions []domain.Question) (Score, error) {
	total := len(questions)
	if total == 0 {
		return Score{}, &domain.PreconditionError{Message: "cannot score a quiz with zero questions"}
	}

	correct := 0
	for _, q := range questions {
		selected, ok := answers[q.ID]
		if ok && selected == q.CorrectOption {
			correct++
		}
	}

	pct, err := Percentage(correct, total)
	if err != nil {
		return Score{}, err
	}
	return Score{Correct: correct, Total: total, Percentage: pct}, nil
}

// Percentage returns round(score/total*100) with halves rounded up.
func Percentage(score, total int) (int, error) {
	if total <= 0 {
		return 0, &domain.PreconditionError{Message: "total questions must be positive"}
	}
	return roundHalfUp(float64(score) / float64(total) * 100), nil
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ResultStore persists finished attempts.
type ResultStore interface {
	CreateResult(ctx context.Context, input domain.ResultInput) (domain.Result, error)
	GetResult(ctx context.Context, resultID string) (domain.Result, error)
	ListResults(ctx context.Context, quizID string) ([]domain.Result, error)
	DeleteResult(ctx context.Context, resultID string) error
	DeleteResultsByQuiz(ctx context.Context, quizID string) (int, error)
}

// ResultPublisher announces newly created results to other systems.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result domain.Result) error
}

// Submission is what a session hands to the grader when it finishes.
type Submission struct {
	Quiz             domain.Quiz
	Questions        []domain.Question
	Identity         domain.Identity
	Answers          domain.AnswerSet
	TimeTakenSeconds int
}

// Grader scores submissions and persists them as results.
type Grader struct {
	results   ResultStore
	publisher ResultPublisher
}

func NewGrader(results ResultStore, publisher ResultPublisher) *Grader {
	return &Grader{results: results, publisher: publisher}
}

// Submit scores the submission and creates its result record.
func (g *Grader) Submit(ctx context.Context, sub Submission) (domain.Result, error) {
	score, err := ScoreAnswers(sub.Answers, sub.Questions)
	if err != nil {
		return domain.Result{}, err
	}

	result, err := g.results.CreateResult(ctx, domain.ResultInput{
		QuizID:           sub.Quiz.ID,
		UserName:         sub.Identity.Name,
		UserEmail:        sub.Identity.Email,
		Score:            score.Correct,
		TotalQuestions:   score.Total,
		Percentage:       score.Percentage,
		Answers:          sub.Answers.Encode(),
		TimeTakenSeconds: domain.Seconds(sub.TimeTakenSeconds),
	})
	if err != nil {
		return domain.Result{}, domain.WrapBackend("create result", err)
	}

	if g.publisher != nil {
		if err := g.publisher.PublishResult(ctx, result); err != nil {
			log.Printf("publish result %s: %v", result.ID, err)
		}
	}
	return result, nil
}
