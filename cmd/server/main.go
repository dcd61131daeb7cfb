package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/expense-assistant/backend/internal/api"
	"github.com/expense-assistant/backend/internal/config"
	"github.com/expense-assistant/backend/internal/ingest"
	"github.com/expense-assistant/backend/internal/llm"
	"github.com/expense-assistant/backend/internal/logger"
	"github.com/expense-assistant/backend/internal/retrieval"
	"github.com/expense-assistant/backend/internal/storage"
	"github.com/expense-assistant/backend/internal/vectorindex"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := logger.New()

	configPath := os.Getenv("EXPENSE_ASSISTANT_CONFIG")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directories")
	}

	index, err := vectorindex.NewDuckStore(cfg.Storage.IndexPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.IndexPath).Msg("failed to open vector index")
	}
	defer index.Close()

	ctx := context.Background()
	gemini, err := llm.NewGeminiClient(ctx, cfg.LLM.EmbeddingModel, cfg.LLM.GenerationModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create LLM client")
	}

	fileStore, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	ingestor := ingest.NewService(index, gemini, fileStore, cfg.Chunking.RecentWindow, log)
	assembler := retrieval.NewAssembler(index, gemini, retrieval.Options{
		TopK:            cfg.Retrieval.TopK,
		MaxChunks:       cfg.Retrieval.MaxChunks,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
		MatchBoost:      cfg.Retrieval.MatchBoost,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Ingestor:  ingestor,
		Assembler: assembler,
		Generator: gemini,
		Pinger:    gemini,
		Index:     index,
		Store:     fileStore,
		Version:   Version,
	})
	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("addr", cfg.GetServerAddr()).
		Str("index", cfg.Storage.IndexPath).
		Str("embedding_model", cfg.LLM.EmbeddingModel).
		Str("generation_model", cfg.LLM.GenerationModel).
		Msg("expense assistant listening")

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
