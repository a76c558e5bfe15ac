package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"screening-quiz-service/internal/config"
	"screening-quiz-service/internal/domain"
	"screening-quiz-service/internal/infra/postgres"
)

// NewSeedCmd upserts the default application tracks into the durable store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()
	store := postgres.NewStore(db)

	seeded := 0
	for _, app := range defaultApplications() {
		if _, err := store.CreateApplication(ctx, app); err != nil {
			if errors.Is(err, domain.ErrDuplicateName) {
				continue
			}
			return err
		}
		seeded++
	}
	log.Printf("seeded %d applications", seeded)
	return nil
}

func defaultApplications() []domain.Application {
	return []domain.Application{
		{
			Name:         "RoadOps",
			Description:  "RoadOps application quiz covering operational procedures and best practices",
			MaxQuestions: 25,
		},
		{
			Name:         "RoadSales",
			Description:  "RoadSales application quiz covering sales processes and methodologies",
			MaxQuestions: 25,
		},
		{
			Name:         "UES",
			Description:  "UES application quiz covering unified enterprise systems",
			MaxQuestions: 25,
		},
		{
			Name:         "Digital",
			Description:  "Digital application quiz covering digital transformation and technologies",
			MaxQuestions: 25,
		},
	}
}
