package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"kernelrag/internal/domain"
)

// WorkflowConfig holds the hosted workflow API connection details. Secrets
// and ids may come from the YAML file or from environment variables (the
// env value wins when both are set).
type WorkflowConfig struct {
	Endpoint         string `yaml:"endpoint"`
	APIKey           string `yaml:"api_key"`
	ProjectID        string `yaml:"project_id"`
	EmbedWorkflowID  string `yaml:"embed_workflow_id"`
	ChatWorkflowID   string `yaml:"chat_workflow_id"`
	IngestWorkflowID string `yaml:"ingest_workflow_id"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for the Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"`
	Collection string        `yaml:"collection"`
	Dimension  int           `yaml:"dimension"`
	Distance   string        `yaml:"distance"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
}

// PipelineConfig tunes the query pipeline.
type PipelineConfig struct {
	TopK int `yaml:"top_k"`
}

// IngestConfig lists the document sources for the ingestion job.
type IngestConfig struct {
	Sources []string `yaml:"sources"`
}

// WebConfig configures the web chat server.
type WebConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Workflow    WorkflowConfig    `yaml:"workflow"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Web         WebConfig         `yaml:"web"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from the given path, applies environment overrides and
// defaults. A missing file is not an error; env vars alone can carry the
// required values.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	overrideEnv(&cfg.Workflow.Endpoint, "GRAPHQL_ENDPOINT")
	overrideEnv(&cfg.Workflow.APIKey, "LAMATIC_API_KEY")
	overrideEnv(&cfg.Workflow.ProjectID, "LAMATIC_PROJECT_ID")
	overrideEnv(&cfg.Workflow.EmbedWorkflowID, "LAMATIC_EMBED_FLOW_ID")
	overrideEnv(&cfg.Workflow.ChatWorkflowID, "LAMATIC_CHAT_FLOW_ID")
	overrideEnv(&cfg.Workflow.IngestWorkflowID, "LAMATIC_INGESTION_FLOW_ID")
	if cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{}
	}
	overrideEnv(&cfg.VectorStore.Qdrant.URL, "QDRANT_URL")
	overrideEnv(&cfg.VectorStore.Qdrant.APIKey, "QDRANT_API_KEY")
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Workflow.TimeoutSecs == 0 {
		cfg.Workflow.TimeoutSecs = 60
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "linux_kernel_vectors_v2"
	}
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = 3072
	}
	if cfg.VectorStore.Distance == "" {
		cfg.VectorStore.Distance = "Cosine"
	}
	if cfg.VectorStore.Qdrant != nil && cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
		cfg.VectorStore.Qdrant.TimeoutSecs = 15
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = domain.DefaultTopK
	}
	if len(cfg.Ingest.Sources) == 0 {
		cfg.Ingest.Sources = []string{
			"https://www.kernel.org/doc/html/latest/process/coding-style.html",
			"https://www.kernel.org/doc/html/latest/admin-guide/mm/concepts.html",
		}
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// ValidateQuery checks everything the chat front ends need before any
// network call is made.
func (c *AppConfig) ValidateQuery() error {
	missing := c.commonMissing()
	if c.Workflow.EmbedWorkflowID == "" {
		missing = append(missing, "workflow.embed_workflow_id (LAMATIC_EMBED_FLOW_ID)")
	}
	if c.Workflow.ChatWorkflowID == "" {
		missing = append(missing, "workflow.chat_workflow_id (LAMATIC_CHAT_FLOW_ID)")
	}
	return missingErr(missing)
}

// ValidateIngest checks everything the ingestion job needs.
func (c *AppConfig) ValidateIngest() error {
	missing := c.commonMissing()
	if c.Workflow.IngestWorkflowID == "" {
		missing = append(missing, "workflow.ingest_workflow_id (LAMATIC_INGESTION_FLOW_ID)")
	}
	if len(c.Ingest.Sources) == 0 {
		missing = append(missing, "ingest.sources")
	}
	return missingErr(missing)
}

func (c *AppConfig) commonMissing() []string {
	var missing []string
	if c.Workflow.Endpoint == "" {
		missing = append(missing, "workflow.endpoint (GRAPHQL_ENDPOINT)")
	}
	if c.Workflow.APIKey == "" {
		missing = append(missing, "workflow.api_key (LAMATIC_API_KEY)")
	}
	if c.Workflow.ProjectID == "" {
		missing = append(missing, "workflow.project_id (LAMATIC_PROJECT_ID)")
	}
	if c.VectorStore.Type == "qdrant" {
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			missing = append(missing, "vector_store.qdrant.url (QDRANT_URL)")
		}
	}
	if c.VectorStore.Collection == "" {
		missing = append(missing, "vector_store.collection")
	}
	if c.VectorStore.Dimension <= 0 {
		missing = append(missing, "vector_store.dimension")
	}
	return missing
}

func missingErr(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
}
