package llmcatalog

import "strings"

// Registry is an immutable, indexed snapshot of one normalization pass.
type Registry struct {
	models []Model
	byID   map[string]int
	// lowerIndex maps lowercased ids to their first position for
	// case-insensitive lookup.
	lowerIndex map[string]int
}

// NewRegistry indexes models. When two providers list the same id, Get
// returns the first one; GetFrom disambiguates.
func NewRegistry(models []Model) *Registry {
	r := &Registry{
		models:     make([]Model, len(models)),
		byID:       make(map[string]int, len(models)),
		lowerIndex: make(map[string]int, len(models)),
	}
	copy(r.models, models)
	for i, m := range r.models {
		if m.ID == "" {
			continue
		}
		if _, ok := r.byID[m.ID]; !ok {
			r.byID[m.ID] = i
		}
		lower := strings.ToLower(m.ID)
		if _, ok := r.lowerIndex[lower]; !ok {
			r.lowerIndex[lower] = i
		}
	}
	return r
}

// Get retrieves a model by its exact id, falling back to a case-insensitive match.
func (r *Registry) Get(id string) (Model, bool) {
	if i, ok := r.byID[id]; ok {
		return r.models[i], true
	}
	if i, ok := r.lowerIndex[strings.ToLower(id)]; ok {
		return r.models[i], true
	}
	return Model{}, false
}

// GetFrom retrieves the model listed with id under provider.
func (r *Registry) GetFrom(provider, id string) (Model, bool) {
	for _, m := range r.models {
		if m.ID == id && strings.EqualFold(m.Provider, provider) {
			return m, true
		}
	}
	return Model{}, false
}

// Models returns every model in normalization order.
func (r *Registry) Models() []Model {
	out := make([]Model, len(r.models))
	copy(out, r.models)
	return out
}

// Len returns the number of models in the snapshot.
func (r *Registry) Len() int { return len(r.models) }

// QueryBuilder provides a chainable API for filtering models.
type QueryBuilder struct {
	registry     *Registry
	provider     string
	capabilities []Capability
	modalities   []Modality
	minContext   int64
	onlyNew      bool
}

// Query starts a new query builder.
func (r *Registry) Query() *QueryBuilder {
	return &QueryBuilder{registry: r}
}

// Provider filters models by provider name, ignoring case.
func (q *QueryBuilder) Provider(p string) *QueryBuilder {
	q.provider = p
	return q
}

// Has filters models by capability. Repeated calls require all of them.
func (q *QueryBuilder) Has(c Capability) *QueryBuilder {
	q.capabilities = append(q.capabilities, c)
	return q
}

// Modality filters models by input or output modality.
func (q *QueryBuilder) Modality(m Modality) *QueryBuilder {
	q.modalities = append(q.modalities, m)
	return q
}

// MinContext keeps models whose context window is at least n tokens.
func (q *QueryBuilder) MinContext(n int64) *QueryBuilder {
	q.minContext = n
	return q
}

// New keeps recently released models only.
func (q *QueryBuilder) New() *QueryBuilder {
	q.onlyNew = true
	return q
}

// List returns the models matching the query in registry order.
func (q *QueryBuilder) List() []Model {
	var results []Model
	for _, m := range q.registry.models {
		if q.matches(m) {
			results = append(results, m)
		}
	}
	return results
}

func (q *QueryBuilder) matches(m Model) bool {
	if q.provider != "" && !strings.EqualFold(m.Provider, q.provider) {
		return false
	}
	for _, c := range q.capabilities {
		if !m.HasCapability(c) {
			return false
		}
	}
	for _, mod := range q.modalities {
		if !m.HasModality(mod) {
			return false
		}
	}
	if q.minContext > 0 && m.ContextWindow < q.minContext {
		return false
	}
	if q.onlyNew && !m.New {
		return false
	}
	return true
}
