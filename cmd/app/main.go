package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitimprove/internal/api"
	"fitimprove/internal/bootstrap"
	"fitimprove/internal/config"
	"fitimprove/internal/db"
	"fitimprove/internal/logger"
	"fitimprove/internal/session"
	"fitimprove/internal/training"
)

func main() {
	logger.Init()
	logger.Info("Starting FitImprove schedule cache")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := session.FromToken(cfg.AccessToken)
	if err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			logger.Fatal("Access token expired; sign in again")
		}
		logger.Fatalf("Failed to read access token: %v", err)
	}
	logger.Infof("Signed in as user %d (%s)", sess.UserID, sess.Role)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open cache database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Cache database ready")

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Errorf("Metrics listener: %v", err)
			}
		}()
		logger.Infof("Metrics exposed on %s", cfg.MetricsAddr)
	}

	repo := training.NewRepository(database)

	deviceID, err := repo.EnsureDeviceID(ctx)
	if err != nil {
		logger.Fatalf("Failed to resolve device id: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.AccessToken, deviceID, cfg.HTTPTimeout, cfg.RequestsPerSecond)

	engine := bootstrap.NewService(repo, client)
	if err := engine.Run(ctx, sess); err != nil {
		logger.Fatalf("Bootstrap failed, sign in again: %v", err)
	}

	queries := training.NewService(repo)

	switch sess.Role {
	case session.RoleCoach:
		trainings, err := queries.CoachSchedule(ctx, sess.UserID)
		if err != nil {
			logger.Fatalf("Failed to read coach schedule: %v", err)
		}
		logger.Infof("Cached %d coach trainings", len(trainings))
		for _, t := range trainings {
			logger.Infof("  %s  %s (%d min, %d free slots)", t.Time.Format("2006-01-02 15:04"), t.Title, t.Duration, t.FreeSlots)
		}
	case session.RoleUser:
		trainings, err := queries.Upcoming(ctx, sess.UserID)
		if err != nil {
			logger.Fatalf("Failed to read upcoming trainings: %v", err)
		}
		logger.Infof("Cached %d agreed trainings", len(trainings))
		for _, t := range trainings {
			logger.Infof("  %s  %s with %s at %s", t.Time.Format("2006-01-02 15:04"), t.Title, t.CoachName, t.GymName)
		}
	}

	logger.Info("Cache is up to date")
}
