package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	config "github.com/joeleesuh/delegate-ai/config/api"
	"github.com/joeleesuh/delegate-ai/gateways/api"
	"github.com/joeleesuh/delegate-ai/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	})

	cfg := config.MustLoad()
	log.Info("configuration loaded",
		slog.Int("port", cfg.Port),
		slog.Bool("database_url_set", cfg.DatabaseURL != ""),
		slog.Bool("recall_api_key_set", cfg.RecallAPIKey != ""),
		slog.Bool("deepgram_api_key_set", cfg.DeepgramAPIKey != ""),
		slog.Bool("openai_api_key_set", cfg.OpenAIAPIKey != ""),
		slog.Bool("llm_api_key_set", cfg.LLMAPIKey != ""))

	ctx := logger.WithContext(context.Background(), log)
	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		return
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	srv, err := api.New(cfg, log)
	if err != nil {
		log.Error("server initialization failed", slog.String("error", err.Error()))
		return err
	}
	defer srv.Close()

	return srv.Start(ctx)
}
