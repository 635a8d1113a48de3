package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KOFI-GYIMAH/team-activity-corpus/docs"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/chat"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/config"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/db"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/github"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/handler"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/llm"
	md "github.com/KOFI-GYIMAH/team-activity-corpus/internal/middleware"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/queue"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/reinforcement"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/splitter"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/worker"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Team Activity Corpus
// @version 1.0.0
// @description Builds and queries a retrieval corpus of team notes and GitHub activity.
// @host localhost:8081
// @BasePath /v1
func main() {
	// * Load configuration
	cfg, err := config.LoadConfiguration()
	if err != nil {
		logger.Error("‼️ Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// * Initialize PostgreSQL database
	database, err := db.NewPostgresDB(cfg.DBURL)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	// * Run migrations
	if err := database.Migrate(); err != nil {
		logger.Error("Failed to run migrations: %v", err)
		os.Exit(1)
	}
	logger.Info("Successfully ran migrations")

	// * Initialize GitHub client and the loader pipeline
	githubClient := github.NewClient(cfg.GitHubToken, cfg.PersonalGitHubToken, cfg.GitHubOrg)
	loader := service.NewCorpusLoader(githubClient, splitter.NewTokenSplitter(), database, service.LoaderConfig{
		DocumentsPath: cfg.DocumentsPath,
		Users:         cfg.Users,
		CommitDays:    cfg.CommitDays,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// * Create and start worker
	corpusWorker := worker.NewCorpusWorker(loader, cfg.RefreshInterval)
	go corpusWorker.Run(ctx)

	// * Chat is optional, it needs an OpenAI compatible endpoint
	var completer chat.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, /v1/chat is disabled")
	}
	answerer := chat.NewAnswerer(database, completer)

	apiHandler := handler.NewCorpusHandler(reinforcement.NewStore(cfg.DocumentsPath), database, corpusWorker, answerer)

	// * Refresh requests go through RabbitMQ when it is configured
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("Failed to initialize RabbitMQ: %v", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()

		err = rabbitMQ.ConsumeRefreshRequests(ctx, func(req queue.RefreshRequest) error {
			corpusWorker.Trigger(req.Reason)
			return nil
		})
		if err != nil {
			logger.Error("Failed to consume refresh requests: %v", err)
			os.Exit(1)
		}
		apiHandler.WithPublisher(rabbitMQ)
	}

	// * Create API server
	router := mux.NewRouter()
	router.Use(md.LoggingMiddleware)
	api := router.PathPrefix("/v1").Subrouter()

	apiHandler.RegisterRoutes(api)
	router.PathPrefix("/v1/swagger/").Handler(httpSwagger.WrapHandler)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("Starting API server on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server error: %v", err)
			os.Exit(1)
		}
	}()

	// * Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error: %v", err)
	}
}
