package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/crave-decoder/config"
	"github.com/pageza/crave-decoder/generation"
	"github.com/pageza/crave-decoder/logging"
	"github.com/pageza/crave-decoder/mealdb"
)

const shutdownTimeout = 10 * time.Second

func newServer(cfg config.Config, log logrus.FieldLogger) *server {
	return &server{
		insights: generation.New(cfg, nil),
		recipes:  mealdb.New(cfg, nil),
		log:      log,
	}
}

// main loads configuration once, wires the handlers and serves until
// SIGINT or SIGTERM.
func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if foundEnv {
		log.Info(".env file loaded successfully")
	} else {
		log.Info("No .env file found; using process environment")
	}
	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY is not set! Insight requests will return the fallback")
	} else {
		log.Info("LLM_API_KEY loaded.")
	}
	if cfg.SecretKey == "" {
		log.Debug("SECRET_KEY is not set")
	}
	log.WithFields(logrus.Fields{
		"llm_endpoint": cfg.LLMEndpoint,
		"llm_model":    cfg.LLMModel,
		"mealdb":       cfg.MealDBBaseURL,
	}).Info("upstreams configured")

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newServer(cfg, log).handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Crave decoder listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
