package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"quizboard/internal/app"
	"quizboard/internal/domain"
	"quizboard/internal/infra/memory"
)

func fourQuestions() []domain.Question {
	opts := []string{"a", "b", "c", "d"}
	return []domain.Question{
		{ID: "q1", Position: 0, Options: opts, CorrectOption: 0},
		{ID: "q2", Position: 1, Options: opts, CorrectOption: 1},
		{ID: "q3", Position: 2, Options: opts, CorrectOption: 2},
		{ID: "q4", Position: 3, Options: opts, CorrectOption: 3},
	}
}

func TestScoreAnswersPartialCredit(t *testing.T) {
	answers := domain.AnswerSet{"q1": 0, "q2": 1, "q3": 9, "q4": 3}

	score, err := app.ScoreAnswers(answers, fourQuestions())
	require.NoError(t, err)
	require.Equal(t, 3, score.Correct)
	require.Equal(t, 4, score.Total)
	require.Equal(t, 75, score.Percentage)
}

func TestScoreAnswersBounds(t *testing.T) {
	questions := fourQuestions()

	tests := []struct {
		name    string
		answers domain.AnswerSet
		correct int
		pct     int
	}{
		{name: "empty", answers: domain.AnswerSet{}, correct: 0, pct: 0},
		{name: "all correct", answers: domain.AnswerSet{"q1": 0, "q2": 1, "q3": 2, "q4": 3}, correct: 4, pct: 100},
		{name: "unknown question ignored", answers: domain.AnswerSet{"q9": 0, "q1": 0}, correct: 1, pct: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := app.ScoreAnswers(tt.answers, questions)
			require.NoError(t, err)
			require.Equal(t, tt.correct, score.Correct)
			require.Equal(t, tt.pct, score.Percentage)
		})
	}
}

func TestScoreNeverDecreasesWithMoreCorrectAnswers(t *testing.T) {
	questions := fourQuestions()
	answers := domain.AnswerSet{}
	prev := -1
	for _, q := range questions {
		answers[q.ID] = q.CorrectOption
		score, err := app.ScoreAnswers(answers, questions)
		require.NoError(t, err)
		require.Greater(t, score.Percentage, prev)
		prev = score.Percentage
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	pct, err := app.Percentage(1, 8)
	require.NoError(t, err)
	require.Equal(t, 13, pct)

	pct, err = app.Percentage(2, 3)
	require.NoError(t, err)
	require.Equal(t, 67, pct)
}

func TestScoreAnswersZeroQuestionsIsPrecondition(t *testing.T) {
	_, err := app.ScoreAnswers(domain.AnswerSet{}, nil)
	require.Error(t, err)
	require.True(t, domain.IsPrecondition(err))

	_, err = app.Percentage(0, 0)
	require.True(t, domain.IsPrecondition(err))
}

type failingResults struct {
	app.ResultStore
}

func (failingResults) CreateResult(context.Context, domain.ResultInput) (domain.Result, error) {
	return domain.Result{}, errors.New("connection refused")
}

type recordingPublisher struct {
	published []domain.Result
	err       error
}

func (p *recordingPublisher) PublishResult(_ context.Context, r domain.Result) error {
	p.published = append(p.published, r)
	return p.err
}

func TestGraderStoresAndPublishes(t *testing.T) {
	store := memory.NewStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	grader := app.NewGrader(store, pub)

	result, err := grader.Submit(context.Background(), app.Submission{
		Quiz:             domain.Quiz{ID: "quiz-1"},
		Questions:        fourQuestions(),
		Identity:         domain.Identity{Name: "Ann", Email: "ann@example.com"},
		Answers:          domain.AnswerSet{"q1": 0},
		TimeTakenSeconds: 42,
	})
	require.NoError(t, err, "publish failures must not fail the submission")
	require.Equal(t, 25, result.Percentage)
	taken, ok := result.TimeTaken()
	require.True(t, ok)
	require.Equal(t, 42, taken)
	require.Len(t, pub.published, 1)

	stored, err := store.ListResults(context.Background(), "quiz-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	answers, err := domain.DecodeAnswerSet(stored[0].Answers)
	require.NoError(t, err)
	require.Equal(t, domain.AnswerSet{"q1": 0}, answers)
}

func TestGraderWrapsStoreFailure(t *testing.T) {
	grader := app.NewGrader(failingResults{}, nil)

	_, err := grader.Submit(context.Background(), app.Submission{
		Quiz:      domain.Quiz{ID: "quiz-1"},
		Questions: fourQuestions(),
		Answers:   domain.AnswerSet{},
	})
	require.True(t, domain.IsBackend(err))
}
