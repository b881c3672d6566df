package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

const modelsDevBody = `{
  "openai": {"id": "openai", "name": "OpenAI", "models": {
    "gpt-4o": {"id": "gpt-4o", "name": "GPT-4o", "limit": {"context": 128000, "output": 16384}}
  }},
  "anthropic": {"id": "anthropic", "name": "Anthropic", "models": {
    "claude-sonnet-4": {"id": "claude-sonnet-4", "name": "Claude Sonnet 4"}
  }}
}`

const openRouterBody = `{"data": [
  {"id": "z-ai/glm-4.6", "name": "GLM 4.6", "context_length": 200000},
  {"id": "anthropic/claude-opus-4", "name": "Claude Opus 4", "context_length": 200000}
]}`

const huggingFaceBody = `[
  {"id": "Qwen/Qwen3-8B", "pipeline_tag": "text-generation"},
  {"modelId": "BAAI/bge-m3", "pipeline_tag": "feature-extraction"}
]`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(cacheDir string) *Client {
	return NewClient(5*time.Second, cacheDir, zerolog.Nop())
}

func TestFetchOneModelsDev(t *testing.T) {
	srv := serve(t, http.StatusOK, modelsDevBody)
	c := newTestClient(t.TempDir())

	payload, err := c.FetchOne(context.Background(), Endpoint{Kind: llmcatalog.KindModelsDev, URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, payload, 2)
	assert.Equal(t, "openai", payload[0].Key)
	assert.Equal(t, "OpenAI", payload[0].Name)
	assert.Equal(t, "anthropic", payload[1].Key)
}

func TestFetchOneOpenRouterKeepsListOrder(t *testing.T) {
	srv := serve(t, http.StatusOK, openRouterBody)
	c := newTestClient(t.TempDir())

	payload, err := c.FetchOne(context.Background(), Endpoint{Kind: llmcatalog.KindOpenRouter, URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.Equal(t, "openrouter", payload[0].Key)
	require.Len(t, payload[0].Models, 2)
	assert.Equal(t, "z-ai/glm-4.6", payload[0].Models[0].Key)
	assert.Equal(t, "anthropic/claude-opus-4", payload[0].Models[1].Key)
}

func TestFetchOneHuggingFaceSendsLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(huggingFaceBody))
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t.TempDir())

	payload, err := c.FetchOne(context.Background(), Endpoint{Kind: llmcatalog.KindHuggingFace, URL: srv.URL, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, "50", gotLimit)
	require.Len(t, payload[0].Models, 2)
	assert.Equal(t, "Qwen/Qwen3-8B", payload[0].Models[0].Key)
	assert.Equal(t, "BAAI/bge-m3", payload[0].Models[1].Key)
}

func TestFetchFallsBackToCache(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "openrouter.json"), []byte(openRouterBody), 0o644))
	srv := serve(t, http.StatusServiceUnavailable, `{"error": "down"}`)
	c := newTestClient(cacheDir)

	payload, err := c.FetchOne(context.Background(), Endpoint{Kind: llmcatalog.KindOpenRouter, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 2, payload.Len())
}

func TestFetchWritesCache(t *testing.T) {
	cacheDir := t.TempDir()
	srv := serve(t, http.StatusOK, huggingFaceBody)
	c := newTestClient(cacheDir)

	_, err := c.FetchOne(context.Background(), Endpoint{Kind: llmcatalog.KindHuggingFace, URL: srv.URL})
	require.NoError(t, err)

	cached, err := os.ReadFile(filepath.Join(cacheDir, "huggingface.json"))
	require.NoError(t, err)
	assert.JSONEq(t, huggingFaceBody, string(cached))
}

func TestFetchSkipsFailedSources(t *testing.T) {
	good := serve(t, http.StatusOK, modelsDevBody)
	bad := serve(t, http.StatusInternalServerError, `oops`)
	c := newTestClient(t.TempDir())

	payload, err := c.Fetch(context.Background(), []Endpoint{
		{Kind: llmcatalog.KindOpenRouter, URL: bad.URL},
		{Kind: llmcatalog.KindModelsDev, URL: good.URL},
	})
	require.NoError(t, err)
	require.Len(t, payload, 2)
	assert.Equal(t, "openai", payload[0].Key)
}

func TestFetchFailsWhenNothingFetched(t *testing.T) {
	bad := serve(t, http.StatusInternalServerError, `oops`)
	c := newTestClient(t.TempDir())

	_, err := c.Fetch(context.Background(), []Endpoint{{Kind: llmcatalog.KindModelsDev, URL: bad.URL}})
	assert.Error(t, err)
}

func TestOpenRouterPayloadRejectsGarbage(t *testing.T) {
	_, err := OpenRouterPayload([]byte(`not json`))
	assert.Error(t, err)
}
