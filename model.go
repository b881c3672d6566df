package llmcatalog

// UnknownProvider marks a record that carried neither an id nor a name.
const UnknownProvider = "Unknown"

// Model is the canonical, provider-independent description of an AI model.
type Model struct {
	ID                  string   `json:"id" yaml:"id"`
	Name                string   `json:"name" yaml:"name"`
	Provider            string   `json:"provider" yaml:"provider"`
	ContextWindow       int64    `json:"contextWindow" yaml:"contextWindow"`
	MaxOutputTokens     int64    `json:"maxOutputTokens" yaml:"maxOutputTokens"`
	InputCost           float64  `json:"inputCost" yaml:"inputCost"`
	OutputCost          float64  `json:"outputCost" yaml:"outputCost"`
	CacheReadCost       float64  `json:"cacheReadCost" yaml:"cacheReadCost"`
	CacheWriteCost      float64  `json:"cacheWriteCost" yaml:"cacheWriteCost"`
	Modalities          []string `json:"modalities" yaml:"modalities"`
	Capabilities        []string `json:"capabilities" yaml:"capabilities"`
	ReleaseDate         string   `json:"releaseDate" yaml:"releaseDate"`
	LastUpdated         string   `json:"lastUpdated" yaml:"lastUpdated"`
	OpenWeights         bool     `json:"openWeights" yaml:"openWeights"`
	SupportsTemperature bool     `json:"supportsTemperature" yaml:"supportsTemperature"`
	SupportsAttachments bool     `json:"supportsAttachments" yaml:"supportsAttachments"`
	New                 bool     `json:"new" yaml:"new"`
}

// HasCapability reports whether the model advertises c.
func (m Model) HasCapability(c Capability) bool { return hasString(m.Capabilities, string(c)) }

// HasModality reports whether the model handles mod on input or output.
func (m Model) HasModality(mod Modality) bool { return hasString(m.Modalities, string(mod)) }

// Fields returns the model as a nested map keyed by its JSON field names.
// Numbers are float64 and sets are []string, the same shapes a JSON
// round trip would produce.
func (m Model) Fields() map[string]any {
	return map[string]any{
		"id":                  m.ID,
		"name":                m.Name,
		"provider":            m.Provider,
		"contextWindow":       float64(m.ContextWindow),
		"maxOutputTokens":     float64(m.MaxOutputTokens),
		"inputCost":           m.InputCost,
		"outputCost":          m.OutputCost,
		"cacheReadCost":       m.CacheReadCost,
		"cacheWriteCost":      m.CacheWriteCost,
		"modalities":          cloneStrings(m.Modalities),
		"capabilities":        cloneStrings(m.Capabilities),
		"releaseDate":         m.ReleaseDate,
		"lastUpdated":         m.LastUpdated,
		"openWeights":         m.OpenWeights,
		"supportsTemperature": m.SupportsTemperature,
		"supportsAttachments": m.SupportsAttachments,
		"new":                 m.New,
	}
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
