package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/teamops/assignment-service/internal/api/http"
	"github.com/teamops/assignment-service/internal/assignment"
	"github.com/teamops/assignment-service/internal/config"
	"github.com/teamops/assignment-service/internal/notify"
	"github.com/teamops/assignment-service/internal/repo/postgres"
	"github.com/teamops/assignment-service/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("assignment service started")

	cfg, err := config.ParseConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.DB.ConnString(), logger)
	if err != nil {
		logger.Error("failed to connect to db", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close db", "error", err.Error())
		}
	}()

	if err := postgres.RunMigrations(ctx, db, logger); err != nil {
		logger.Error("failed to run db migrations", "error", err.Error())
		os.Exit(1)
	}

	teamRepo := postgres.NewTeamRepo(db)
	memberRepo := postgres.NewMemberRepo(db)
	itemRepo := postgres.NewWorkItemRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	selector := assignment.NewSelector(cfg.TaskThreshold(), cfg.ReviewThreshold())
	capacity := service.NewCapacityService(memberRepo, logger)
	notifier := notify.NewLogNotifier(logger)

	teamService := service.NewTeamService(teamRepo, memberRepo)
	workItemService := service.NewWorkItemService(itemRepo, memberRepo, capacity, selector, auditRepo, notifier, logger, nil)
	rebalanceService := service.NewRebalanceService(memberRepo, itemRepo, capacity, selector, auditRepo, logger)
	rebalanceService.MaxMovesPerMember = cfg.MaxMovesPerMember()
	rebalanceService.OverloadedPercent = cfg.OverloadedPercent()
	rebalanceService.AvailablePercent = cfg.AvailablePercent()
	statsService := service.NewStatsService(auditRepo)

	app := service.NewApp(teamService, workItemService, rebalanceService, statsService)
	server := api.NewServer(app, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           api.NewRouter(server, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err.Error())
			stop()
		}
	}()

	<-stopCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err.Error())
	}
}
