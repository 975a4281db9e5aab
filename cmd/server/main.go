package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/config"
	"github.com/stemsi/quizlive-backend/internal/game"
	"github.com/stemsi/quizlive-backend/internal/handler"
	"github.com/stemsi/quizlive-backend/internal/logger"
	"github.com/stemsi/quizlive-backend/internal/router"
	"github.com/stemsi/quizlive-backend/internal/validator"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Dur("host_timeout", cfg.HostInactivityTimeout).
		Float64("score_factor", cfg.ScoreDecayFactor).
		Msg("Starting QuizLive Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Room + Game Engine ────────────────────────────────────────────
	hub := ws.NewHub(log)
	engine := game.NewEngine(cfg, hub, log)

	engineCtx, engineCancel := context.WithCancel(context.Background())
	defer engineCancel()
	go engine.Run(engineCtx)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		WS:      handler.NewWSHandler(engine, hub, log, cfg.AllowedOrigins),
		Session: handler.NewSessionHandler(engine),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests and close live connections.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the engine. Session state is in-memory only: full loss on
	// restart is expected behavior, clients resync via rejoin.
	engineCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
