package llmcatalog

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RawRecord is one provider record as decoded from JSON, with the key it was
// listed under.
type RawRecord struct {
	Key  string
	Data any
}

// ProviderEntry is one provider's section of a raw payload.
type ProviderEntry struct {
	Key    string
	Name   string
	Models []RawRecord
}

// DisplayName is the provider name tagged onto every model of the entry.
func (e ProviderEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return NormalizeProviderName(e.Key)
}

// Payload is a raw multi-provider catalog in source order.
type Payload []ProviderEntry

// Len returns the number of raw model records across all providers.
func (p Payload) Len() int {
	n := 0
	for _, e := range p {
		n += len(e.Models)
	}
	return n
}

// ParsePayload decodes a provider-keyed JSON document of the form
//
//	{"<provider>": {"name": "...", "models": {"<model>": {...}}}}
//
// keeping the document's key order. A document that is not an object yields
// an empty payload; providers without a models object are skipped.
func ParsePayload(data []byte) Payload {
	top := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, top); err != nil {
		return Payload{}
	}
	payload := Payload{}
	for pair := top.Oldest(); pair != nil; pair = pair.Next() {
		if entry, ok := parseProvider(pair.Key, pair.Value); ok {
			payload = append(payload, entry)
		}
	}
	return payload
}

func parseProvider(key string, raw json.RawMessage) (ProviderEntry, bool) {
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, fields); err != nil {
		return ProviderEntry{}, false
	}
	modelsRaw, ok := fields.Get("models")
	if !ok {
		return ProviderEntry{}, false
	}
	models := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(modelsRaw, models); err != nil {
		return ProviderEntry{}, false
	}

	entry := ProviderEntry{Key: key, Models: make([]RawRecord, 0, models.Len())}
	if nameRaw, ok := fields.Get("name"); ok {
		var name string
		if json.Unmarshal(nameRaw, &name) == nil {
			entry.Name = name
		}
	}
	for pair := models.Oldest(); pair != nil; pair = pair.Next() {
		var data any
		if err := json.Unmarshal(pair.Value, &data); err != nil {
			data = nil
		}
		entry.Models = append(entry.Models, RawRecord{Key: pair.Key, Data: data})
	}
	return entry, true
}

// Normalizer runs the pipeline with a fixed transformer per source kind.
type Normalizer struct {
	sources map[SourceKind]Source
	now     func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDefaults replaces the defaults tables the transformers are built with.
// Kinds missing from tables keep their built-in table.
func WithDefaults(tables map[SourceKind]Defaults) Option {
	return func(n *Normalizer) {
		for kind, d := range tables {
			n.sources[kind] = NewSource(kind, d)
		}
	}
}

// WithClock sets the evaluation time used to derive Model.New.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// NewNormalizer returns a Normalizer using the built-in defaults tables and
// the wall clock, adjusted by opts.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		sources: make(map[SourceKind]Source),
		now:     time.Now,
	}
	for kind, d := range DefaultTables() {
		n.sources[kind] = NewSource(kind, d)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize transforms every record of p with its provider's transformer and
// returns the models in provider-then-record order. Models that appear under
// several providers are kept once per provider.
func (n *Normalizer) Normalize(p Payload) []Model {
	now := n.now()
	out := make([]Model, 0, p.Len())
	for _, entry := range p {
		src := n.sources[SourceFor(entry.Key)]
		provider := entry.DisplayName()
		for _, rec := range entry.Models {
			out = append(out, src.Transform(rec.Data, provider, now))
		}
	}
	return out
}

// NormalizeJSON parses data with ParsePayload and normalizes the result.
func (n *Normalizer) NormalizeJSON(data []byte) []Model {
	return n.Normalize(ParsePayload(data))
}

// Normalize runs the pipeline with the built-in defaults tables.
func Normalize(p Payload, now time.Time) []Model {
	return NewNormalizer(WithClock(func() time.Time { return now })).Normalize(p)
}
