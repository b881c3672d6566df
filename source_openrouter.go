package llmcatalog

import (
	"strings"
	"time"
)

// openRouterCapabilities maps entries of supported_parameters.
var openRouterCapabilities = []signal{
	{keys: []string{"tools", "tool_choice"}, capability: CapToolCalling},
	{keys: []string{"reasoning", "include_reasoning"}, capability: CapReasoning},
	{keys: []string{"response_format", "structured_outputs"}, capability: CapStructuredOutput},
}

// OpenRouterSource transforms OpenRouter marketplace records: string pricing,
// an architecture block with modality lists and a supported_parameters list.
type OpenRouterSource struct {
	defaults Defaults
}

// NewOpenRouterSource returns a transformer that fills absent fields from d.
func NewOpenRouterSource(d Defaults) *OpenRouterSource {
	return &OpenRouterSource{defaults: d}
}

// Kind reports KindOpenRouter.
func (s *OpenRouterSource) Kind() SourceKind { return KindOpenRouter }

// Transform maps one marketplace record to a Model. Capabilities come from
// supported_parameters; a hugging_face_id marks open weights.
func (s *OpenRouterSource) Transform(raw any, providerHint string, now time.Time) Model {
	d := s.defaults
	r := asRecord(raw)

	m, ok := identify(d, r.text("", "id"), r.text("", "name"), providerHint)
	if !ok {
		return m
	}

	m.ContextWindow = r.count(d.ContextWindow, "context_length", "contextLength", "top_provider.context_length")
	m.MaxOutputTokens = r.count(d.MaxOutputTokens,
		"top_provider.max_completion_tokens", "top_provider.maxCompletionTokens", "max_completion_tokens")
	m.InputCost = r.number(d.InputCost, "pricing.prompt")
	m.OutputCost = r.number(d.OutputCost, "pricing.completion")
	m.CacheReadCost = r.number(d.CacheReadCost, "pricing.input_cache_read", "pricing.inputCacheRead")
	m.CacheWriteCost = r.number(d.CacheWriteCost, "pricing.input_cache_write", "pricing.inputCacheWrite")

	inputs := r.list("architecture.input_modalities", "architecture.inputModalities")
	outputs := r.list("architecture.output_modalities", "architecture.outputModalities")
	if inputs == nil && outputs == nil {
		inputs, outputs = parseModalityArrow(r.text("", "architecture.modality"))
	}
	if inputs != nil || outputs != nil {
		m.Modalities = unionStrings(inputs, outputs)
	}

	params := r.list("supported_parameters", "supportedParameters")
	m.Capabilities = unionStrings(inferFromValues(params, openRouterCapabilities))
	if params != nil {
		m.SupportsTemperature = hasString(params, "temperature")
	}
	if inputs != nil {
		m.SupportsAttachments = hasString(inputs, string(ModalityImage)) || hasString(inputs, string(ModalityFile))
	}

	m.ReleaseDate = openRouterCreated(r)
	m.LastUpdated = r.text("", "last_updated", "lastUpdated")
	if id := r.text("", "hugging_face_id", "huggingFaceId"); id != "" {
		m.OpenWeights = true
	}
	m.New = isNew(m.ReleaseDate, now)
	return m
}

// maxUnixSeconds is 9999-12-31T23:59:59Z, the last instant an ISO date can hold.
const maxUnixSeconds = 253402300799

// openRouterCreated renders the unix "created" timestamp as an ISO date.
// String values are kept as given.
func openRouterCreated(r record) string {
	v, ok := r.lookup("created")
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	secs := toCount(ToNumber(v))
	if secs <= 0 || secs > maxUnixSeconds {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02")
}

// parseModalityArrow splits the compact "text+image->text" form.
func parseModalityArrow(s string) (inputs, outputs []string) {
	in, out, ok := strings.Cut(s, "->")
	if !ok {
		return nil, nil
	}
	return strings.Split(in, "+"), strings.Split(out, "+")
}
