package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/threadintel/backend/internal/ai"
	"github.com/threadintel/backend/internal/config"
	"github.com/threadintel/backend/internal/db"
	"github.com/threadintel/backend/internal/engine"
	httpapi "github.com/threadintel/backend/internal/http"
	"github.com/threadintel/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "threadintel-backend").Logger()

	ctx := context.Background()

	var store *db.Store
	if cfg.DatabaseURL != "" {
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
	} else {
		logger.Info().Msg("no DATABASE_URL set, persistence disabled")
	}

	keywords := engine.DefaultKeywords()
	if table, err := config.LoadKeywords(cfg.KeywordsFile); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.KeywordsFile).Msg("failed to load keyword table")
	} else if table != nil {
		keywords = table
		logger.Info().Str("path", cfg.KeywordsFile).Msg("loaded keyword table")
	}

	var sentiment engine.SentimentScorer
	if cfg.SentimentEnabled {
		sentiment = engine.NewVaderScorer()
	} else {
		logger.Info().Msg("sentiment scoring disabled, using neutral scores")
	}

	var augment engine.Augmenter
	if cfg.SummarizerURL != "" {
		summarizer := ai.HTTPSummarizer{BaseURL: cfg.SummarizerURL, Timeout: cfg.SummarizerTimeout}
		augment = summarizer.Summarize
	} else if cfg.Env == "dev" {
		summarizer := ai.MockSummarizer{}
		augment = summarizer.Summarize
		logger.Info().Msg("using mock summarizer")
	}

	eng := engine.New(keywords, sentiment, augment, engine.Options{
		MMRDiversity:   cfg.MMRDiversity,
		AugmentTimeout: cfg.SummarizerTimeout,
	}, logger)
	svc := &service.AnalysisService{Engine: eng, Store: store, Logger: logger}

	router := httpapi.Router(cfg, store, svc, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
