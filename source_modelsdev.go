package llmcatalog

import "time"

// modelsDevCapabilities maps the registry's boolean feature flags.
var modelsDevCapabilities = []signal{
	{keys: []string{"tool_call", "toolCall"}, capability: CapToolCalling},
	{keys: []string{"reasoning"}, capability: CapReasoning},
	{keys: []string{"structured_output", "structuredOutput"}, capability: CapStructuredOutput},
	{keys: []string{"attachment"}, capability: CapAttachments},
}

// ModelsDevSource transforms records shaped like the models.dev registry:
// nested limit/cost objects, modality lists and flat boolean feature flags.
// It is also the fallback for providers without a dedicated schema.
type ModelsDevSource struct {
	defaults Defaults
}

// NewModelsDevSource returns a transformer that fills absent fields from d.
func NewModelsDevSource(d Defaults) *ModelsDevSource {
	return &ModelsDevSource{defaults: d}
}

// Kind reports KindModelsDev.
func (s *ModelsDevSource) Kind() SourceKind { return KindModelsDev }

// Transform maps one registry record to a Model. Snake_case keys win over
// their camelCase spellings.
func (s *ModelsDevSource) Transform(raw any, providerHint string, now time.Time) Model {
	d := s.defaults
	r := asRecord(raw)

	m, ok := identify(d, r.text("", "id"), r.text("", "name"), providerHint)
	if !ok {
		return m
	}

	m.ContextWindow = r.count(d.ContextWindow, "limit.context", "context_window", "contextWindow")
	m.MaxOutputTokens = r.count(d.MaxOutputTokens, "limit.output", "max_output_tokens", "maxOutputTokens")
	m.InputCost = r.number(d.InputCost, "cost.input", "input_cost", "inputCost")
	m.OutputCost = r.number(d.OutputCost, "cost.output", "output_cost", "outputCost")
	m.CacheReadCost = r.number(d.CacheReadCost, "cost.cache_read", "cost.cacheRead")
	m.CacheWriteCost = r.number(d.CacheWriteCost, "cost.cache_write", "cost.cacheWrite")

	if r.has("modalities.input", "modalities.output") {
		m.Modalities = unionStrings(r.list("modalities.input"), r.list("modalities.output"))
	}
	m.Capabilities = unionStrings(inferFromFlags(r, modelsDevCapabilities))

	m.ReleaseDate = r.text("", "release_date", "releaseDate")
	m.LastUpdated = r.text("", "last_updated", "lastUpdated")
	m.OpenWeights = r.flag(d.OpenWeights, "open_weights", "openWeights")
	m.SupportsTemperature = r.flag(d.SupportsTemperature, "temperature")
	m.SupportsAttachments = r.flag(d.SupportsAttachments, "attachment")
	m.New = isNew(m.ReleaseDate, now)
	return m
}
