package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"screening-quiz-service/internal/config"
	"screening-quiz-service/internal/infra/postgres"
	"screening-quiz-service/internal/ingest"
)

// NewImportCmd loads a question CSV into the durable store, replacing the
// application's existing pool.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		applicationName string
		filePath        string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a question CSV for one application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, applicationName, filePath)
		},
	}
	cmd.Flags().StringVar(&applicationName, "application", "", "application name the questions belong to")
	cmd.Flags().StringVar(&filePath, "file", "", "path to the question CSV")
	_ = cmd.MarkFlagRequired("application")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, configPath, applicationName, filePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := ingest.Parse(f)
	if err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()
	store := postgres.NewStore(db)

	app, err := store.ApplicationByName(ctx, applicationName)
	if err != nil {
		return fmt.Errorf("application %q: %w", applicationName, err)
	}
	imported, err := store.ReplaceQuestions(ctx, app.ID, report.Questions)
	if err != nil {
		return err
	}
	log.Printf("imported %d questions for %s (%d rows skipped)", imported, app.Name, report.Skipped)
	return nil
}
