package app

import "quizboard/internal/domain"

// ScoreTier buckets a percentage for display.
type ScoreTier string

const (
	TierExcellent  ScoreTier = "excellent"
	TierGreat      ScoreTier = "great"
	TierGood       ScoreTier = "good"
	TierFair       ScoreTier = "fair"
	TierKeepTrying ScoreTier = "keep_trying"
)

// tierFor applies the 90/80/70/60 thresholds.
func tierFor(percentage int) (ScoreTier, string) {
	switch {
	case percentage >= 90:
		return TierExcellent, "Excellent!"
	case percentage >= 80:
		return TierGreat, "Great job!"
	case percentage >= 70:
		return TierGood, "Good work!"
	case percentage >= 60:
		return TierFair, "Not bad!"
	default:
		return TierKeepTrying, "Keep trying!"
	}
}

// Report is a result enriched with figures derived from its quiz.
type Report struct {
	Result         domain.Result `json:"result"`
	QuizTitle      string        `json:"quizTitle"`
	Difficulty     string        `json:"difficulty"`
	CompletionRate int           `json:"completionRate"`
	TimeEfficiency *int          `json:"timeEfficiency,omitempty"`
	TimeTaken      string        `json:"timeTaken"`
	Tier           ScoreTier     `json:"tier"`
	Message        string        `json:"message"`
	Celebrate      bool          `json:"celebrate"`
}

// AssembleReport combines a result with its parent quiz. It has no side effects.
func AssembleReport(result domain.Result, quiz domain.Quiz) Report {
	taken, _ := result.TimeTaken()
	tier, msg := tierFor(result.Percentage)

	report := Report{
		Result:         result,
		QuizTitle:      quiz.Title,
		Difficulty:     string(quiz.Difficulty),
		CompletionRate: 100,
		TimeTaken:      FormatClock(taken),
		Tier:           tier,
		Message:        msg,
		Celebrate:      result.Percentage >= 80,
	}
	if quiz.Timed() {
		eff := TimeEfficiency(quiz.TimeLimitSeconds, taken)
		report.TimeEfficiency = &eff
	}
	return report
}

// TimeEfficiency is the share of the time limit left unused, clamped to [0, 100].
func TimeEfficiency(limitSeconds, takenSeconds int) int {
	if limitSeconds <= 0 {
		return 0
	}
	eff := roundHalfUp(float64(limitSeconds-takenSeconds) / float64(limitSeconds) * 100)
	if eff < 0 {
		return 0
	}
	if eff > 100 {
		return 100
	}
	return eff
}
