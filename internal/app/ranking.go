package app

import (
	"fmt"
	"sort"

	"quizboard/internal/domain"
)

// RankResults returns a copy of results ordered best first: percentage
// descending, then time taken ascending. Results without a recorded time come
// after timed results with the same percentage. Remaining ties keep fetch order.
func RankResults(results []domain.Result) []domain.Result {
	ranked := make([]domain.Result, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		at, aok := a.TimeTaken()
		bt, bok := b.TimeTaken()
		if aok != bok {
			return aok
		}
		return at < bt
	})
	return ranked
}

// LeaderboardStats are recomputed from a ranked set on every request.
type LeaderboardStats struct {
	Attempts          int    `json:"attempts"`
	AveragePercentage int    `json:"averagePercentage"`
	BestPercentage    int    `json:"bestPercentage"`
	FastestSeconds    int    `json:"fastestSeconds"`
	FastestTime       string `json:"fastestTime"`
}

// Summarize derives the leaderboard header figures. Every figure is 0 for an
// empty set.
func Summarize(results []domain.Result) LeaderboardStats {
	stats := LeaderboardStats{Attempts: len(results), FastestTime: FormatClock(0)}
	if len(results) == 0 {
		return stats
	}

	sum := 0
	fastest, seen := 0, false
	for i, r := range results {
		sum += r.Percentage
		if i == 0 || r.Percentage > stats.BestPercentage {
			stats.BestPercentage = r.Percentage
		}
		if t, ok := r.TimeTaken(); ok && (!seen || t < fastest) {
			fastest, seen = t, true
		}
	}
	stats.AveragePercentage = roundHalfUp(float64(sum) / float64(len(results)))
	stats.FastestSeconds = fastest
	stats.FastestTime = FormatClock(fastest)
	return stats
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
