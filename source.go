package llmcatalog

import (
	"strings"
	"time"
)

// SourceKind identifies a provider family with its own raw record schema.
type SourceKind string

const (
	KindModelsDev   SourceKind = "modelsdev"
	KindOpenRouter  SourceKind = "openrouter"
	KindHuggingFace SourceKind = "huggingface"
)

// NewModelWindow is how recently a model must have been released to be new.
const NewModelWindow = 30 * 24 * time.Hour

// Source turns one raw provider record into a canonical Model. Implementations
// never panic; a structurally invalid record yields a defaults-only Model.
type Source interface {
	Kind() SourceKind
	Transform(raw any, providerHint string, now time.Time) Model
}

// SourceFor picks the provider family for a payload provider key. Keys that
// are not a known marketplace or hub use the generic registry schema.
func SourceFor(providerKey string) SourceKind {
	switch strings.ToLower(strings.TrimSpace(providerKey)) {
	case "openrouter":
		return KindOpenRouter
	case "huggingface", "hugging-face", "hf":
		return KindHuggingFace
	default:
		return KindModelsDev
	}
}

// NewSource builds the transformer for kind with the given defaults table.
func NewSource(kind SourceKind, d Defaults) Source {
	switch kind {
	case KindOpenRouter:
		return NewOpenRouterSource(d)
	case KindHuggingFace:
		return NewHuggingFaceSource(d)
	default:
		return NewModelsDevSource(d)
	}
}

// record is a raw provider object. A nil record answers every lookup as absent.
type record map[string]any

func asRecord(v any) record {
	m, _ := v.(map[string]any)
	return m
}

// lookup returns the first non-null value among paths. Paths may be dotted to
// reach into nested objects; list the snake_case spelling first.
func (r record) lookup(paths ...string) (any, bool) {
	for _, path := range paths {
		var current any = map[string]any(r)
		found := true
		for _, segment := range strings.Split(path, ".") {
			m, ok := current.(map[string]any)
			if !ok {
				found = false
				break
			}
			if current, ok = m[segment]; !ok {
				found = false
				break
			}
		}
		if found && current != nil {
			return current, true
		}
	}
	return nil, false
}

func (r record) text(def string, paths ...string) string {
	v, ok := r.lookup(paths...)
	if !ok {
		return def
	}
	switch v.(type) {
	case map[string]any, []any:
		return def
	}
	return strings.TrimSpace(stringOf(v))
}

func (r record) number(def float64, paths ...string) float64 {
	if v, ok := r.lookup(paths...); ok {
		return nonNegative(ToNumber(v))
	}
	return def
}

func (r record) count(def int64, paths ...string) int64 {
	if v, ok := r.lookup(paths...); ok {
		return toCount(ToNumber(v))
	}
	return def
}

func (r record) flag(def bool, paths ...string) bool {
	if v, ok := r.lookup(paths...); ok {
		return ToBoolean(v)
	}
	return def
}

func (r record) list(paths ...string) []string {
	if v, ok := r.lookup(paths...); ok {
		return ToStringArray(v)
	}
	return nil
}

func (r record) has(paths ...string) bool {
	_, ok := r.lookup(paths...)
	return ok
}

// identify starts a Model from the defaults table. ok is false when the record
// has neither id nor name; the returned Model is then the Unknown sentinel and
// no other raw field may be read into it.
func identify(d Defaults, id, name, providerHint string) (Model, bool) {
	m := d.model()
	if id == "" && name == "" {
		m.Provider = UnknownProvider
		return m, false
	}
	m.ID = id
	m.Name = name
	if m.Name == "" {
		m.Name = id
	}
	if providerHint != "" {
		m.Provider = providerHint
	}
	if m.Provider == "" {
		m.Provider = UnknownProvider
	}
	return m, true
}

// isNew reports whether releaseDate parses and lies no more than
// NewModelWindow before now. Future dates count as new.
func isNew(releaseDate string, now time.Time) bool {
	released, ok := parseDate(releaseDate)
	if !ok {
		return false
	}
	return now.Sub(released) <= NewModelWindow
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// unionStrings merges lists keeping the first occurrence of each value.
func unionStrings(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// inferFromFlags collects the capabilities whose flag is truthy in r.
func inferFromFlags(r record, table []signal) []string {
	var caps []string
	for _, s := range table {
		if r.flag(false, s.keys...) {
			caps = append(caps, string(s.capability))
		}
	}
	return caps
}

// inferFromValues collects the capabilities whose marker appears in values.
func inferFromValues(values []string, table []signal) []string {
	var caps []string
	for _, s := range table {
		for _, key := range s.keys {
			if hasString(values, key) {
				caps = append(caps, string(s.capability))
				break
			}
		}
	}
	return caps
}
