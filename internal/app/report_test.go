package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"quizboard/internal/app"
	"quizboard/internal/domain"
)

func TestAssembleReportTimedQuiz(t *testing.T) {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Go Basics", Difficulty: domain.DifficultyMedium, TimeLimitSeconds: 600}
	r := result("r1", 85, domain.Seconds(150))

	report := app.AssembleReport(r, quiz)
	require.Equal(t, "Go Basics", report.QuizTitle)
	require.Equal(t, "Medium", report.Difficulty)
	require.Equal(t, 100, report.CompletionRate)
	require.Equal(t, "2:30", report.TimeTaken)
	require.NotNil(t, report.TimeEfficiency)
	require.Equal(t, 75, *report.TimeEfficiency)
	require.Equal(t, app.TierGreat, report.Tier)
	require.True(t, report.Celebrate)
}

func TestAssembleReportUntimedQuiz(t *testing.T) {
	report := app.AssembleReport(result("r1", 40, nil), domain.Quiz{ID: "quiz-1", Title: "Open"})
	require.Nil(t, report.TimeEfficiency)
	require.Equal(t, "0:00", report.TimeTaken)
	require.Equal(t, app.TierKeepTrying, report.Tier)
	require.False(t, report.Celebrate)
}

func TestTimeEfficiencyClamped(t *testing.T) {
	require.Equal(t, 0, app.TimeEfficiency(60, 90))
	require.Equal(t, 100, app.TimeEfficiency(60, -5))
	require.Equal(t, 100, app.TimeEfficiency(60, 0))
	require.Equal(t, 50, app.TimeEfficiency(60, 30))
	require.Equal(t, 0, app.TimeEfficiency(0, 30))
}

func TestReportTiers(t *testing.T) {
	tests := []struct {
		pct       int
		tier      app.ScoreTier
		celebrate bool
	}{
		{100, app.TierExcellent, true},
		{90, app.TierExcellent, true},
		{89, app.TierGreat, true},
		{80, app.TierGreat, true},
		{79, app.TierGood, false},
		{70, app.TierGood, false},
		{60, app.TierFair, false},
		{59, app.TierKeepTrying, false},
		{0, app.TierKeepTrying, false},
	}
	for _, tt := range tests {
		report := app.AssembleReport(result("r", tt.pct, nil), domain.Quiz{})
		require.Equal(t, tt.tier, report.Tier, "percentage %d", tt.pct)
		require.Equal(t, tt.celebrate, report.Celebrate, "percentage %d", tt.pct)
		require.NotEmpty(t, report.Message)
	}
}
