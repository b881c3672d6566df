package llmcatalog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "zhipuai": {"id": "zhipuai", "name": "Zhipu AI", "models": {
    "glm-4.6": {"id": "glm-4.6", "name": "GLM-4.6", "limit": {"context": 204800}},
    "glm-4.5": {"id": "glm-4.5", "name": "GLM-4.5"}
  }},
  "openai": {"id": "openai", "models": {
    "gpt-4o": {"id": "gpt-4o", "name": "GPT-4o", "tool_call": true}
  }},
  "broken": {"name": "Broken"},
  "openrouter": {"name": "OpenRouter", "models": {
    "openai/gpt-4o": {"id": "openai/gpt-4o", "pricing": {"prompt": "0.0000025"}},
    "gpt-4o": {"id": "gpt-4o", "supported_parameters": ["tools"]}
  }},
  "huggingface": {"models": {
    "BAAI/bge-m3": {"id": "BAAI/bge-m3", "pipeline_tag": "feature-extraction"}
  }}
}`

func TestParsePayloadKeepsOrder(t *testing.T) {
	p := ParsePayload([]byte(samplePayload))

	require.Len(t, p, 4)
	var keys []string
	for _, e := range p {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"zhipuai", "openai", "openrouter", "huggingface"}, keys)
	assert.Equal(t, "glm-4.6", p[0].Models[0].Key)
	assert.Equal(t, "glm-4.5", p[0].Models[1].Key)
	assert.Equal(t, 6, p.Len())
}

func TestParsePayloadMalformed(t *testing.T) {
	for _, in := range []string{``, `null`, `[]`, `"text"`, `{"a": 1}`, `{not json`} {
		assert.Empty(t, ParsePayload([]byte(in)), in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Zhipu AI", ProviderEntry{Key: "zhipuai", Name: "Zhipu AI"}.DisplayName())
	assert.Equal(t, "OpenAI", ProviderEntry{Key: "openai"}.DisplayName())
	assert.Equal(t, "Hugging Face", ProviderEntry{Key: "huggingface"}.DisplayName())
}

func TestNormalize(t *testing.T) {
	models := Normalize(ParsePayload([]byte(samplePayload)), testNow)

	require.Len(t, models, 6)
	var ids []string
	for _, m := range models {
		ids = append(ids, m.Provider+"/"+m.ID)
	}
	assert.Equal(t, []string{
		"Zhipu AI/glm-4.6",
		"Zhipu AI/glm-4.5",
		"OpenAI/gpt-4o",
		"OpenRouter/openai/gpt-4o",
		"OpenRouter/gpt-4o",
		"Hugging Face/BAAI/bge-m3",
	}, ids)

	assert.Equal(t, int64(204800), models[0].ContextWindow)
	assert.Equal(t, []string{"tool_calling"}, models[2].Capabilities)
	assert.Equal(t, 0.0000025, models[3].InputCost)
	assert.Equal(t, []string{"tool_calling"}, models[4].Capabilities)
	assert.Equal(t, []string{"embeddings"}, models[5].Capabilities)
	assert.True(t, models[5].OpenWeights)
}

func TestNormalizeKeepsCrossProviderDuplicates(t *testing.T) {
	models := NewNormalizer().NormalizeJSON([]byte(samplePayload))
	n := 0
	for _, m := range models {
		if m.ID == "gpt-4o" {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

func TestNormalizerWithDefaults(t *testing.T) {
	tables := DefaultTables()
	tables[KindModelsDev] = Defaults{Provider: "Registry", ContextWindow: 4096, SupportsTemperature: true}

	n := NewNormalizer(
		WithDefaults(tables),
		WithClock(func() time.Time { return testNow }),
	)
	models := n.Normalize(Payload{{
		Key:    "",
		Models: []RawRecord{{Key: "m", Data: map[string]any{"id": "m"}}},
	}})

	require.Len(t, models, 1)
	assert.Equal(t, UnknownProvider, models[0].Provider)
	assert.Equal(t, int64(4096), models[0].ContextWindow)
	assert.True(t, models[0].SupportsTemperature)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, testNow))
	assert.Empty(t, NewNormalizer().NormalizeJSON([]byte(`garbage`)))
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := Snapshot{
		SyncedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Models:   Normalize(ParsePayload([]byte(samplePayload)), testNow),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.True(t, snap.SyncedAt.Equal(got.SyncedAt))
	assert.Equal(t, snap.Models, got.Models)

	_, err = ReadSnapshot(strings.NewReader("{"))
	assert.Error(t, err)
}
