package filter

import (
	"time"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

// ModelResult is one model's verdict inside a run.
type ModelResult struct {
	ModelID  string `json:"modelId" yaml:"modelId"`
	Provider string `json:"provider" yaml:"provider"`
	Name     string `json:"name" yaml:"name"`
	Result   `yaml:",inline"`
}

// Run is the audit snapshot of evaluating a filter over a catalog. It embeds
// a copy of the filter as it was at evaluation time.
type Run struct {
	ID          string        `json:"id" yaml:"id"`
	FilterID    string        `json:"filterId" yaml:"filterId"`
	Filter      Filter        `json:"filter" yaml:"filter"`
	EvaluatedAt time.Time     `json:"evaluatedAt" yaml:"evaluatedAt"`
	Total       int           `json:"total" yaml:"total"`
	Matched     int           `json:"matched" yaml:"matched"`
	Results     []ModelResult `json:"results" yaml:"results"`
}

// NewRun assembles the snapshot for results computed over models.
func NewRun(id string, f Filter, models []llmcatalog.Model, results []Result, at time.Time) Run {
	run := Run{
		ID:          id,
		FilterID:    f.ID,
		Filter:      f,
		EvaluatedAt: at,
		Results:     make([]ModelResult, 0, len(results)),
	}
	run.Filter.Rules = append([]RuleClause(nil), f.Rules...)
	for i := 0; i < len(models) && i < len(results); i++ {
		run.Results = append(run.Results, ModelResult{
			ModelID:  models[i].ID,
			Provider: models[i].Provider,
			Name:     models[i].Name,
			Result:   results[i],
		})
		if results[i].Match {
			run.Matched++
		}
	}
	run.Total = len(run.Results)
	return run
}
