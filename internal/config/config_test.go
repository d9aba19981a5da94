package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	assert.Equal(t, "linux_kernel_vectors_v2", cfg.VectorStore.Collection)
	assert.Equal(t, 3072, cfg.VectorStore.Dimension)
	assert.Equal(t, "Cosine", cfg.VectorStore.Distance)
	assert.Equal(t, 4, cfg.Pipeline.TopK)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Len(t, cfg.Ingest.Sources, 2)
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
workflow:
  endpoint: https://example.dev/graphql
  api_key: yaml-key
  project_id: proj
  embed_workflow_id: embed-1
  chat_workflow_id: chat-1
vector_store:
  collection: custom
  dimension: 768
  qdrant:
    url: https://qdrant.example
pipeline:
  top_k: 13
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.dev/graphql", cfg.Workflow.Endpoint)
	assert.Equal(t, "custom", cfg.VectorStore.Collection)
	assert.Equal(t, 768, cfg.VectorStore.Dimension)
	assert.Equal(t, 13, cfg.Pipeline.TopK)
	assert.NoError(t, cfg.ValidateQuery())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("LAMATIC_API_KEY", "env-key")
	t.Setenv("QDRANT_URL", "https://env-qdrant.example")
	path := writeConfig(t, `
workflow:
  api_key: yaml-key
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Workflow.APIKey)
	assert.Equal(t, "https://env-qdrant.example", cfg.VectorStore.Qdrant.URL)
}

func TestValidateQuery_ListsEveryMissingField(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	err = cfg.ValidateQuery()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow.endpoint")
	assert.Contains(t, err.Error(), "workflow.api_key")
	assert.Contains(t, err.Error(), "workflow.project_id")
	assert.Contains(t, err.Error(), "workflow.embed_workflow_id")
	assert.Contains(t, err.Error(), "workflow.chat_workflow_id")
	assert.Contains(t, err.Error(), "vector_store.qdrant.url")
}

func TestValidateIngest_RequiresIngestWorkflowID(t *testing.T) {
	path := writeConfig(t, `
workflow:
  endpoint: https://example.dev/graphql
  api_key: k
  project_id: p
vector_store:
  qdrant:
    url: https://qdrant.example
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.ValidateIngest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow.ingest_workflow_id")

	cfg.Workflow.IngestWorkflowID = "ingest-1"
	assert.NoError(t, cfg.ValidateIngest())
}

func TestValidateQuery_MemoryStoreNeedsNoQdrantURL(t *testing.T) {
	path := writeConfig(t, `
workflow:
  endpoint: https://example.dev/graphql
  api_key: k
  project_id: p
  embed_workflow_id: e
  chat_workflow_id: c
vector_store:
  type: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateQuery())
}
