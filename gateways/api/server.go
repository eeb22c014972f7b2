package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	config "github.com/joeleesuh/delegate-ai/config/api"
	"github.com/joeleesuh/delegate-ai/gateways/api/clients/analyzer"
	"github.com/joeleesuh/delegate-ai/gateways/api/clients/recall"
	"github.com/joeleesuh/delegate-ai/gateways/api/clients/transcribe"
	"github.com/joeleesuh/delegate-ai/gateways/api/handler"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage/postgres"
	"github.com/joeleesuh/delegate-ai/services/meeting/usecase"
)

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sql.DB
	handler *handler.Handler
}

// New wires storage, provider clients, and the pipeline usecase. Provider
// selection happens here, once, from configured credentials: components
// without a key get their simulated variant.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	log.Info("creating new api server")

	var (
		db  *sql.DB
		stg storage.Storage
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, err
		}
		stg = postgres.New(db)
		log.Info("using postgres meeting store")
	} else {
		stg = storage.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory meeting store")
	}

	var recorder usecase.Recorder
	if cfg.RecallAPIKey != "" {
		recorder = recall.New(recall.Config{
			APIKey:        cfg.RecallAPIKey,
			RecordingsDir: cfg.RecordingsDir,
			PollInterval:  cfg.RecallPollInterval,
			MaxPolls:      cfg.RecallMaxPolls,
		})
		log.Info("recall recorder configured")
	} else {
		recorder = recall.NewSimulated()
		log.Warn("RECALL_API_KEY not set, using simulated recorder")
	}

	var providers []transcribe.Provider
	if cfg.DeepgramAPIKey != "" {
		providers = append(providers, transcribe.NewDeepgram(cfg.DeepgramAPIKey, ""))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, transcribe.NewWhisper(cfg.OpenAIAPIKey, ""))
	}
	if len(providers) == 0 {
		providers = append(providers, transcribe.NewSimulated())
		log.Warn("no speech-to-text key set, using simulated transcription")
	}
	selector := transcribe.NewSelector(providers...)

	var an usecase.Analyzer
	if cfg.LLMAPIKey != "" {
		an = analyzer.NewLLM(cfg.LLMAPIKey, "", cfg.LLMModel)
		log.Info("llm analyzer configured", slog.String("model", cfg.LLMModel))
	} else {
		an = analyzer.NewSimulated()
		log.Warn("LLM_API_KEY not set, using simulated analyzer")
	}

	policies := usecase.StagePolicies{
		Recording:     usecase.ParsePolicy(cfg.RecordingStagePolicy, usecase.PolicyFail),
		Transcription: usecase.ParsePolicy(cfg.TranscriptionStagePolicy, usecase.PolicyFail),
		Analysis:      usecase.ParsePolicy(cfg.AnalysisStagePolicy, usecase.PolicyDegrade),
	}
	log.Debug("stage policies",
		slog.String("recording", string(policies.Recording)),
		slog.String("transcription", string(policies.Transcription)),
		slog.String("analysis", string(policies.Analysis)))

	usc := usecase.New(stg, recorder, selector, an, policies)
	h := handler.New(usc, cfg.ProcessSecret, log)

	return &Server{
		cfg:     cfg,
		log:     log,
		db:      db,
		handler: h,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting api server")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.handler.RegisterRoutes(router)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	// WriteTimeout stays unset: the processing trigger is synchronous and a
	// run can outlast any reasonable response deadline.
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("api gateway started", slog.String("address", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.log.Info("start shutdown", slog.String("signal", sig.String()))
		return s.stop(srv)
	case <-ctx.Done():
		s.log.Info("closing server due to context cancellation")
		return s.stop(srv)
	}
}

func (s *Server) stop(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		srv.Close()
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	s.log.Info("server shutdown completed successfully")
	return nil
}

// Close releases the database handle when one was opened.
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
