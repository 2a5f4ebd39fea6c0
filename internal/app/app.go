package app

import (
	"context"
	"fmt"
	"time"

	"github.com/markdave123-py/Docuchat/internal/config"
	"github.com/markdave123-py/Docuchat/internal/core"
	db "github.com/markdave123-py/Docuchat/internal/core/database"
	"github.com/markdave123-py/Docuchat/internal/core/extract"
	"github.com/markdave123-py/Docuchat/internal/core/ingestion_engine"
	"github.com/markdave123-py/Docuchat/internal/core/llm"
	objectclient "github.com/markdave123-py/Docuchat/internal/core/object-client"
	"github.com/markdave123-py/Docuchat/internal/core/speech"
	"github.com/markdave123-py/Docuchat/internal/core/video"
	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/services"
)

// App owns every long-lived component and the HTTP server. Optional
// backends (S3, speech, video indexer) are wired only when configured;
// the pipeline degrades by leaving their formats unregistered.
type App struct {
	Log      *logger.Logger
	Store    core.Store
	Ingestor *ingestion_engine.DocumentIngestor
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	store, err := db.NewDatabaseClient(initCtx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	log.Info("database initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(initCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedMaxRetries, log)
	if err != nil {
		return nil, fmt.Errorf("embedder init: %w", err)
	}

	deps := ingestion_engine.Deps{
		Store:     store,
		Embedder:  embedder,
		Extractor: extract.NewDocconvExtractor(false),
	}

	if cfg.MetadataExtraction {
		llmProvider, err := llm.NewGeminiLLM(initCtx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, fmt.Errorf("llm init: %w", err)
		}
		deps.LLM = llmProvider
	}

	var objects *objectclient.S3Client
	if cfg.EnhancedCitations {
		objects, err = objectclient.NewS3Client(initCtx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("object client init: %w", err)
		}
		deps.Objects = objects
	}

	if transcriber, err := speech.NewTranscriber(initCtx, log); err != nil {
		log.Warn("speech transcriber unavailable, audio ingestion disabled", "error", err)
	} else {
		deps.Transcriber = transcriber
	}

	if cfg.VideoIndexerEndpoint != "" {
		indexer, err := video.NewIndexerClient(cfg.VideoIndexerEndpoint, cfg.VideoIndexerKey, log)
		if err != nil {
			return nil, fmt.Errorf("video indexer init: %w", err)
		}
		deps.Video = indexer
	}

	ingestor, err := ingestion_engine.NewDocumentIngestor(cfg, deps, log)
	if err != nil {
		return nil, fmt.Errorf("ingestor init: %w", err)
	}

	userSvc := services.NewUserService(store)
	docSvc := services.NewDocumentService(store, ingestor, cfg.TempDir, log)
	searchSvc := services.NewSearchService(store, embedder, log)
	if objects != nil {
		docSvc.EnableCitationCleanup(objects, cfg.BucketName)
		searchSvc.EnableCitations(objects, cfg.BucketName, 15*time.Minute)
	}

	server := NewServer(cfg, userSvc, docSvc, searchSvc)

	return &App{Log: log, Store: store, Ingestor: ingestor, Server: server}, nil
}

func (a *App) Close() {
	if a.Ingestor != nil {
		a.Ingestor.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
