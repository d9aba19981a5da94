package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"kernelrag/internal/config"
	"kernelrag/internal/domain"
	"kernelrag/internal/ingest"
	"kernelrag/internal/logger"
	"kernelrag/internal/vectorstore/memory"
	"kernelrag/internal/vectorstore/qdrant"
	"kernelrag/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateIngest(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logg := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	client := workflow.NewClient(workflow.Config{
		Endpoint:  cfg.Workflow.Endpoint,
		APIKey:    cfg.Workflow.APIKey,
		ProjectID: cfg.Workflow.ProjectID,
		Timeout:   time.Duration(cfg.Workflow.TimeoutSecs) * time.Second,
	})
	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}

	pipe := ingest.New(client, cfg.Workflow.IngestWorkflowID, store,
		cfg.VectorStore.Dimension, cfg.VectorStore.Distance, logg)

	stored, err := pipe.Run(context.Background(), cfg.Ingest.Sources)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}
	logg.Info("ingestion finished", "sources", len(cfg.Ingest.Sources), "stored", stored)
	if stored == 0 {
		os.Exit(1)
	}
}

func buildStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStore(), nil
	case "qdrant", "":
		return qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	}
	return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
}
