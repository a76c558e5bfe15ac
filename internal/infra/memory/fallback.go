package memory

import (
	"context"

	"screening-quiz-service/internal/domain"
)

// NewFallbackCatalog returns a catalog pre-seeded with the static emergency
// dataset, shaped exactly like the durable store so callers cannot tell the
// sources apart.
func NewFallbackCatalog() *Catalog {
	c := NewCatalog()
	ctx := context.Background()
	for _, seed := range fallbackSeed() {
		app, err := c.CreateApplication(ctx, seed.app)
		if err != nil {
			continue
		}
		_, _ = c.ReplaceQuestions(ctx, app.ID, seed.questions)
	}
	return c
}

type seedEntry struct {
	app       domain.Application
	questions []domain.Question
}

func fallbackSeed() []seedEntry {
	return []seedEntry{
		{
			app: domain.Application{
				Name:         "RoadOps",
				Description:  "RoadOps application quiz covering operational procedures and best practices",
				MaxQuestions: 25,
			},
			questions: []domain.Question{
				{
					Text:    "What is the primary purpose of RoadOps?",
					OptionA: "Road maintenance operations",
					OptionB: "Traffic management",
					OptionC: "Fleet optimization",
					OptionD: "Route planning",
					Correct: domain.ChoiceA,
				},
				{
					Text:    "Which metric is most important for RoadOps efficiency?",
					OptionA: "Response time",
					OptionB: "Cost per mile",
					OptionC: "Vehicle utilization",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
				{
					Text:    "What type of data does RoadOps primarily handle?",
					OptionA: "Operational data",
					OptionB: "Financial data",
					OptionC: "Customer data",
					OptionD: "Marketing data",
					Correct: domain.ChoiceA,
				},
			},
		},
		{
			app: domain.Application{
				Name:         "RoadSales",
				Description:  "RoadSales application quiz covering sales processes and methodologies",
				MaxQuestions: 25,
			},
			questions: []domain.Question{
				{
					Text:    "What is the main feature of RoadSales?",
					OptionA: "Sales tracking",
					OptionB: "Customer management",
					OptionC: "Lead generation",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
				{
					Text:    "RoadSales helps optimize which process?",
					OptionA: "Sales pipeline",
					OptionB: "Customer onboarding",
					OptionC: "Revenue forecasting",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
				{
					Text:    "What kind of reports does RoadSales generate?",
					OptionA: "Sales performance",
					OptionB: "Customer analytics",
					OptionC: "Revenue insights",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
			},
		},
		{
			app: domain.Application{
				Name:         "UES",
				Description:  "UES application quiz covering unified enterprise systems",
				MaxQuestions: 25,
			},
			questions: []domain.Question{
				{
					Text:    "What does UES stand for?",
					OptionA: "Unified Enterprise System",
					OptionB: "Universal Enterprise Solution",
					OptionC: "Unified Enterprise Solutions",
					OptionD: "Universal Enterprise Systems",
					Correct: domain.ChoiceC,
				},
				{
					Text:    "UES integrates which business functions?",
					OptionA: "HR and Finance",
					OptionB: "Operations and Sales",
					OptionC: "IT and Security",
					OptionD: "All enterprise functions",
					Correct: domain.ChoiceD,
				},
				{
					Text:    "What is the primary benefit of UES?",
					OptionA: "Cost reduction",
					OptionB: "Process integration",
					OptionC: "Data consistency",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
			},
		},
		{
			app: domain.Application{
				Name:         "Digital",
				Description:  "Digital application quiz covering digital transformation and technologies",
				MaxQuestions: 25,
			},
			questions: []domain.Question{
				{
					Text:    "What is digital transformation?",
					OptionA: "Converting to digital formats",
					OptionB: "Using digital technologies to transform business",
					OptionC: "Going paperless",
					OptionD: "Automating processes",
					Correct: domain.ChoiceB,
				},
				{
					Text:    "Which technology is key to digital transformation?",
					OptionA: "Cloud computing",
					OptionB: "Artificial Intelligence",
					OptionC: "Internet of Things",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
				{
					Text:    "Digital transformation primarily focuses on:",
					OptionA: "Technology adoption",
					OptionB: "Process improvement",
					OptionC: "Customer experience",
					OptionD: "All of the above",
					Correct: domain.ChoiceD,
				},
			},
		},
	}
}
