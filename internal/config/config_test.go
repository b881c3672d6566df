package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/catalog.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []llmcatalog.SourceKind{llmcatalog.KindModelsDev, llmcatalog.KindOpenRouter}, cfg.SourceKinds())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_SOURCES", "HuggingFace, openrouter")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("EVAL_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"huggingface", "openrouter"}, cfg.Sources)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.EvalConcurrency)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_SOURCES", "modelsdev,artificialanalysis")

	_, err := Load()
	assert.ErrorContains(t, err, "artificialanalysis")
}

func TestLoadRejectsBadURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENROUTER_URL", "not a url")

	_, err := Load()
	assert.ErrorContains(t, err, "OPENROUTER_URL")
}
