package app_test

import (
	"testing"

	"screening-quiz-service/internal/app"
	"screening-quiz-service/internal/domain"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{20, 25, 80},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{5, 6, 83},
		{1, 8, 13}, // 12.5 rounds half up
		{0, 0, 0},
		{5, -1, 0},
	}
	for _, tc := range cases {
		if got := app.Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestSummarizeEmptyLedger(t *testing.T) {
	summary := app.Summarize(nil)
	if summary.Count != 0 || summary.MeanPercentage != 0 || summary.MaxPercentage != 0 || summary.MinPercentage != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
}

func TestSummarizeBuckets(t *testing.T) {
	results := []domain.Result{
		{Percentage: 100}, // excellent
		{Percentage: 90},  // excellent, boundary
		{Percentage: 89},  // good
		{Percentage: 75},  // good, boundary
		{Percentage: 74},  // average
		{Percentage: 60},  // average, boundary
		{Percentage: 59},  // poor
		{Percentage: 0},   // poor
	}

	summary := app.Summarize(results)
	if summary.Count != 8 {
		t.Fatalf("expected count 8, got %d", summary.Count)
	}
	want := domain.Buckets{Excellent: 2, Good: 2, Average: 2, Poor: 2}
	if summary.Buckets != want {
		t.Fatalf("buckets = %+v, want %+v", summary.Buckets, want)
	}
	if summary.MaxPercentage != 100 || summary.MinPercentage != 0 {
		t.Fatalf("min/max = %d/%d, want 0/100", summary.MinPercentage, summary.MaxPercentage)
	}
	// (100+90+89+75+74+60+59+0)/8 = 68.375, rounded to one decimal.
	if summary.MeanPercentage != 68.4 {
		t.Fatalf("mean = %v, want 68.4", summary.MeanPercentage)
	}
}

func TestSummarizeSingleResult(t *testing.T) {
	summary := app.Summarize([]domain.Result{{Percentage: 80}})
	if summary.Count != 1 || summary.MeanPercentage != 80 || summary.MaxPercentage != 80 || summary.MinPercentage != 80 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Buckets.Good != 1 {
		t.Fatalf("expected 80%% in good bucket, got %+v", summary.Buckets)
	}
}
