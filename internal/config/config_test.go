package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, ProviderMock, cfg.NarrativeProvider)
	assert.Equal(t, 30*time.Second, cfg.BedrockTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("TABLE_NAME", "decisions-prod")
	t.Setenv("BEDROCK_TIMEOUT", "45s")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreDynamoDB, cfg.StoreBackend)
	assert.Equal(t, "decisions-prod", cfg.TableName)
	assert.Equal(t, 45*time.Second, cfg.BedrockTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Load()
	cfg.StoreBackend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Port = -1
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.StoreBackend = StoreDynamoDB
	cfg.TableName = ""
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.NarrativeProvider = "openai"
	assert.Error(t, cfg.Validate())
}

func TestWatcherLoadsOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	err := os.WriteFile(path, []byte("modelId: model-a\nbranchModelId: model-b\n"), 0o644)
	require.NoError(t, err)

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	got := w.Current()
	assert.Equal(t, "model-a", got.ModelID)
	assert.Equal(t, "model-b", got.BranchModelID)
}

func TestWatcherDisabledWithoutPath(t *testing.T) {
	w, err := NewWatcher("", zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, Overrides{}, w.Current())
}
