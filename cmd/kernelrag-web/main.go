package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kernelrag/internal/config"
	"kernelrag/internal/domain"
	"kernelrag/internal/logger"
	"kernelrag/internal/pipeline"
	"kernelrag/internal/session"
	"kernelrag/internal/vectorstore/memory"
	"kernelrag/internal/vectorstore/qdrant"
	"kernelrag/internal/web"
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
	if err := cfg.ValidateQuery(); err != nil {
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

	pipe := pipeline.New(
		workflow.NewEmbedder(client, cfg.Workflow.EmbedWorkflowID),
		store,
		workflow.NewAnswerer(client, cfg.Workflow.ChatWorkflowID),
		cfg.Pipeline.TopK,
		func(stage pipeline.Stage) {
			logg.Debug("pipeline stage", "stage", stage.String())
		},
	)

	server := web.NewServer(pipe, session.NewRegistry(), logg)
	srv := &http.Server{
		Addr:    cfg.Web.Addr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logg.Info("web chat listening", "addr", cfg.Web.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown failed", "error", err)
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
