package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"kernelrag/internal/config"
	"kernelrag/internal/domain"
	"kernelrag/internal/pipeline"
	"kernelrag/internal/session"
	"kernelrag/internal/tui"
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
	if err := cfg.ValidateQuery(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

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

	stages := make(chan pipeline.Stage, 8)
	pipe := pipeline.New(
		workflow.NewEmbedder(client, cfg.Workflow.EmbedWorkflowID),
		store,
		workflow.NewAnswerer(client, cfg.Workflow.ChatWorkflowID),
		cfg.Pipeline.TopK,
		func(stage pipeline.Stage) {
			select {
			case stages <- stage:
			default:
			}
		},
	)

	m := tui.New(pipe, session.New(), stages)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
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
