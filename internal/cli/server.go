package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"screening-quiz-service/internal/app"
	"screening-quiz-service/internal/config"
	"screening-quiz-service/internal/infra/memory"
	"screening-quiz-service/internal/infra/postgres"
	redisinfra "screening-quiz-service/internal/infra/redis"
	transport "screening-quiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 2*time.Hour)

	// The fallback catalog always exists; the durable store joins it when
	// postgres is configured and the coordinator decides which one serves.
	fallback := memory.NewFallbackCatalog()
	var primary app.Catalog
	var results app.ResultStore = memory.NewResultStore()
	if cfg.Postgres.URL != "" {
		store := postgres.NewStore(openBun(cfg.Postgres.URL))
		primary = store
		results = store
	}
	coordinator := app.NewCoordinator(primary, fallback)

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
	}

	service := app.NewQuizService(coordinator, sessions, results)
	service.SetDefaultMaxQuestions(cfg.Quiz.DefaultMaxQuestions)
	handler := transport.NewHandler(service, coordinator.SourceName, cfg.Server.AdminUser, cfg.Server.AdminPassword)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting screening quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
