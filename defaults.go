package llmcatalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Defaults is the per-field fallback table a transformer applies when a raw
// record omits a field. Invalid values that are present still coerce to zero.
type Defaults struct {
	Provider            string   `yaml:"provider"`
	ContextWindow       int64    `yaml:"context_window"`
	MaxOutputTokens     int64    `yaml:"max_output_tokens"`
	InputCost           float64  `yaml:"input_cost"`
	OutputCost          float64  `yaml:"output_cost"`
	CacheReadCost       float64  `yaml:"cache_read_cost"`
	CacheWriteCost      float64  `yaml:"cache_write_cost"`
	Modalities          []string `yaml:"modalities"`
	OpenWeights         bool     `yaml:"open_weights"`
	SupportsTemperature bool     `yaml:"supports_temperature"`
	SupportsAttachments bool     `yaml:"supports_attachments"`
}

// model returns a record populated only from the table.
func (d Defaults) model() Model {
	return Model{
		Provider:            d.Provider,
		ContextWindow:       d.ContextWindow,
		MaxOutputTokens:     d.MaxOutputTokens,
		InputCost:           d.InputCost,
		OutputCost:          d.OutputCost,
		CacheReadCost:       d.CacheReadCost,
		CacheWriteCost:      d.CacheWriteCost,
		Modalities:          cloneStrings(d.Modalities),
		Capabilities:        []string{},
		OpenWeights:         d.OpenWeights,
		SupportsTemperature: d.SupportsTemperature,
		SupportsAttachments: d.SupportsAttachments,
	}
}

// DefaultTables returns the built-in defaults for every source kind.
func DefaultTables() map[SourceKind]Defaults {
	return map[SourceKind]Defaults{
		KindModelsDev: {
			Provider: UnknownProvider,
		},
		KindOpenRouter: {
			Provider:            "OpenRouter",
			SupportsTemperature: true,
		},
		KindHuggingFace: {
			Provider:            "Hugging Face",
			OpenWeights:         true,
			SupportsTemperature: true,
		},
	}
}

// defaultsFile is the on-disk layout of a defaults override file:
//
//	defaults:
//	  openrouter:
//	    provider: OpenRouter
//	    supports_temperature: true
type defaultsFile struct {
	Defaults map[SourceKind]Defaults `yaml:"defaults"`
}

// LoadDefaults reads a YAML defaults file and returns the built-in tables
// with every listed kind replaced by the file's entry.
func LoadDefaults(r io.Reader) (map[SourceKind]Defaults, error) {
	var file defaultsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	tables := DefaultTables()
	for kind, d := range file.Defaults {
		if _, ok := tables[kind]; !ok {
			return nil, fmt.Errorf("unknown source kind %q in defaults", kind)
		}
		tables[kind] = d
	}
	return tables, nil
}
