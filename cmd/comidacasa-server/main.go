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

	"comidacasa/internal/clipper"
	"comidacasa/internal/config"
	"comidacasa/internal/llm"
	"comidacasa/internal/planner"
	"comidacasa/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.NewFromEnv()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	gen, closeGen, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize Gemini client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeGen()

	invoker := llm.NewInvoker(gen, llm.DefaultPolicy())
	core := planner.New(invoker)
	clip := clipper.New(invoker)

	e := server.New(logger, core, clip)
	httpServer := server.NewHTTPServer(cfg.Port, e)

	go func() {
		logger.Info("server listening", slog.String("port", cfg.Port))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
