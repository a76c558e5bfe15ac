package app

import (
	"math"

	"screening-quiz-service/internal/domain"
)

// Percentage derives the integer percentage for a score, rounding half up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Summarize aggregates the result ledger for the admin view. An empty ledger
// yields all zeros rather than NaN.
func Summarize(results []domain.Result) domain.StatsSummary {
	summary := domain.StatsSummary{Count: len(results)}
	if len(results) == 0 {
		return summary
	}

	sum := 0
	summary.MinPercentage = results[0].Percentage
	summary.MaxPercentage = results[0].Percentage
	for _, r := range results {
		p := r.Percentage
		sum += p
		if p > summary.MaxPercentage {
			summary.MaxPercentage = p
		}
		if p < summary.MinPercentage {
			summary.MinPercentage = p
		}
		switch {
		case p >= 90:
			summary.Buckets.Excellent++
		case p >= 75:
			summary.Buckets.Good++
		case p >= 60:
			summary.Buckets.Average++
		default:
			summary.Buckets.Poor++
		}
	}
	summary.MeanPercentage = math.Round(float64(sum)/float64(len(results))*10) / 10
	return summary
}
