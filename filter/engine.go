package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

const (
	RationaleAllPassed = "All criteria passed"
	RationaleNoMatch   = "No matching criteria"
)

// Result is the verdict of one filter against one model.
type Result struct {
	Match             bool    `json:"match" yaml:"match"`
	Score             float64 `json:"score" yaml:"score"`
	FailedHardClauses int     `json:"failedHardClauses" yaml:"failedHardClauses"`
	PassedSoftClauses int     `json:"passedSoftClauses" yaml:"passedSoftClauses"`
	TotalSoftClauses  int     `json:"totalSoftClauses" yaml:"totalSoftClauses"`
	Rationale         string  `json:"rationale" yaml:"rationale"`
}

// Evaluate runs rules against model in order. Hard clauses gate the match;
// soft clauses add their weight to a score normalized by the total soft
// weight. Only failed hard clauses and passed soft clauses are explained.
func Evaluate(rules []RuleClause, model llmcatalog.Model) Result {
	fields := model.Fields()

	var (
		res       Result
		lines     []string
		softScore float64
		softTotal float64
	)
	for _, c := range rules {
		passed := evaluateFields(c, fields)
		switch c.Type {
		case Hard:
			if !passed {
				res.FailedHardClauses++
				lines = append(lines, "Required "+describe(c)+" not met")
			}
		case Soft:
			w := c.EffectiveWeight()
			res.TotalSoftClauses++
			softTotal += w
			if passed {
				res.PassedSoftClauses++
				softScore += w
				lines = append(lines, fmt.Sprintf("Preferred %s met (+%s)", describe(c), formatNumber(w)))
			}
		}
	}

	if softTotal > 0 {
		res.Score = softScore / softTotal
	}
	res.Match = res.FailedHardClauses == 0
	switch {
	case len(lines) > 0:
		res.Rationale = strings.Join(lines, "; ")
	case res.Match:
		res.Rationale = RationaleAllPassed
	default:
		res.Rationale = RationaleNoMatch
	}
	return res
}

// EvaluateAll evaluates rules against every model in parallel and returns the
// results in model order.
func EvaluateAll(rules []RuleClause, models []llmcatalog.Model) []Result {
	return EvaluateAllLimit(rules, models, runtime.GOMAXPROCS(0))
}

// EvaluateAllLimit is EvaluateAll with at most limit concurrent evaluations.
// A limit below one means no bound.
func EvaluateAllLimit(rules []RuleClause, models []llmcatalog.Model, limit int) []Result {
	results := make([]Result, len(models))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range models {
		g.Go(func() error {
			results[i] = Evaluate(rules, models[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Ranked pairs a matching model with its verdict.
type Ranked struct {
	Model  llmcatalog.Model `json:"model" yaml:"model"`
	Result Result           `json:"result" yaml:"result"`
}

// Rank keeps the matching models and orders them by descending score. Models
// with equal scores keep their input order.
func Rank(models []llmcatalog.Model, results []Result) []Ranked {
	n := min(len(models), len(results))
	ranked := make([]Ranked, 0, n)
	for i := 0; i < n; i++ {
		if results[i].Match {
			ranked = append(ranked, Ranked{Model: models[i], Result: results[i]})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	return ranked
}

// FormatResult renders r on one line.
func FormatResult(r Result) string {
	if !r.Match {
		return "Rejected: " + r.Rationale
	}
	if r.TotalSoftClauses == 0 {
		return "Matched"
	}
	return fmt.Sprintf("Matched (%d%%, %d/%d preferences)",
		int(math.Round(r.Score*100)), r.PassedSoftClauses, r.TotalSoftClauses)
}

func describe(c RuleClause) string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, formatValue(c.Value))
}

func formatValue(v any) string {
	if n, ok := llmcatalog.NumberValue(v); ok {
		return formatNumber(n)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
