package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
	"github.com/cybersturmer/pmdragon-core-api/internal/events"
	httpapi "github.com/cybersturmer/pmdragon-core-api/internal/http"
	"github.com/cybersturmer/pmdragon-core-api/internal/jobs"
	"github.com/cybersturmer/pmdragon-core-api/internal/logger"
	"github.com/cybersturmer/pmdragon-core-api/internal/mq"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
	"github.com/cybersturmer/pmdragon-core-api/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db := repo.MustOpen(ctx, cfg, logger.Named(log, "db"))
	defer db.Close()
	if err := repo.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema ensure failed")
	}

	// Repositories
	persons := repo.NewPersonsRepo(db, logger.Named(log, "persons"))
	workspaces := repo.NewWorkspacesRepo(db, logger.Named(log, "workspaces"))
	projects := repo.NewProjectsRepo(db, logger.Named(log, "projects"))
	categories := repo.NewCategoriesRepo(db, logger.Named(log, "categories"))
	issues := repo.NewIssuesRepo(db, logger.Named(log, "issues"))
	sprints := repo.NewSprintsRepo(db, logger.Named(log, "sprints"))
	workingDays := repo.NewWorkingDaysRepo(db, logger.Named(log, "working_days"))
	requests := repo.NewRequestsRepo(db, logger.Named(log, "requests"))
	messages := repo.NewMessagesRepo(db, logger.Named(log, "messages"))

	// Queue and live updates
	queue, err := mq.NewPublisher(cfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("mq connect failed")
	}
	defer queue.Close()

	live := events.NewPublisher(cfg, logger.Named(log, "events"))
	defer live.Close()
	if err := live.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, live updates degraded")
	}

	// Services
	authSvc := services.NewAuthService(cfg, logger.Named(log, "auth"), persons, workspaces, requests, queue)
	workspaceSvc := services.NewWorkspaceService(logger.Named(log, "workspace"), workspaces)
	projectSvc := services.NewProjectService(logger.Named(log, "project"), projects, categories, workingDays, live)
	issueSvc := services.NewIssueService(logger.Named(log, "issue"), issues, categories, sprints, persons, live)
	sprintSvc := services.NewSprintService(logger.Named(log, "sprint"), sprints, issues, categories, workingDays, live)
	messageSvc := services.NewMessageService(logger.Named(log, "message"), messages, persons, queue, live)

	// HTTP server
	handlers := httpapi.NewHandlers(cfg, logger.Named(log, "http"),
		authSvc, workspaceSvc, projectSvc, issueSvc, sprintSvc, messageSvc, categories)
	router := httpapi.NewRouter(cfg, logger.Named(log, "http"), handlers)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	// Cron
	cron := jobs.NewCron(cfg, logger.Named(log, "cron"), db, requests)
	cron.Start()
	defer cron.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	log.Info().Str("addr", cfg.HTTPAddr).Msg("api listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	time.Sleep(100 * time.Millisecond)
}
