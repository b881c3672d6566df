package filter

import (
	llmcatalog "github.com/kingfs/go-llm-catalog"
)

// Operator compares a model field with a clause value.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// ClauseType decides whether a clause gates the match or only adds to the score.
type ClauseType string

const (
	Hard ClauseType = "hard"
	Soft ClauseType = "soft"
)

// RuleClause is one comparison of a filter.
type RuleClause struct {
	Field    string     `json:"field" yaml:"field" validate:"required"`
	Operator Operator   `json:"operator" yaml:"operator" validate:"oneof=eq ne gt gte lt lte in contains"`
	Value    any        `json:"value" yaml:"value"`
	Type     ClauseType `json:"type" yaml:"type" validate:"oneof=hard soft"`
	Weight   *float64   `json:"weight,omitempty" yaml:"weight,omitempty" validate:"omitempty,gte=0"`
}

// EffectiveWeight is the clause weight, 1 when unset. Negative and NaN
// weights count as 0 so a score never leaves [0, 1].
func (c RuleClause) EffectiveWeight() float64 {
	if c.Weight == nil {
		return 1
	}
	if w := *c.Weight; w > 0 {
		return w
	}
	return 0
}

// EvaluateClause applies c to model. It never fails: unknown operators, type
// mismatches and missing fields all evaluate to a plain boolean.
func EvaluateClause(c RuleClause, model llmcatalog.Model) bool {
	return evaluateFields(c, model.Fields())
}

func evaluateFields(c RuleClause, fields map[string]any) bool {
	value, present := GetFieldValue(fields, c.Field)
	switch c.Operator {
	case OpEq:
		return present && strictEqual(value, c.Value)
	case OpNe:
		return !present || !strictEqual(value, c.Value)
	case OpGt, OpGte, OpLt, OpLte:
		if !present {
			return false
		}
		return compare(c.Operator, value, c.Value)
	case OpIn:
		return present && sliceContains(c.Value, value)
	case OpContains:
		return present && sliceContains(value, c.Value)
	}
	return false
}

// strictEqual compares scalars of the same kind. Numbers of different Go
// kinds compare by value; slices and maps are never equal.
func strictEqual(a, b any) bool {
	if x, ok := llmcatalog.NumberValue(a); ok {
		y, ok := llmcatalog.NumberValue(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func compare(op Operator, a, b any) bool {
	x, ok := llmcatalog.NumberValue(a)
	if !ok {
		return false
	}
	y, ok := llmcatalog.NumberValue(b)
	if !ok {
		return false
	}
	switch op {
	case OpGt:
		return x > y
	case OpGte:
		return x >= y
	case OpLt:
		return x < y
	case OpLte:
		return x <= y
	}
	return false
}

// sliceContains reports whether list is an array holding an element strictly
// equal to v.
func sliceContains(list, v any) bool {
	switch items := list.(type) {
	case []any:
		for _, item := range items {
			if strictEqual(item, v) {
				return true
			}
		}
	case []string:
		for _, item := range items {
			if strictEqual(item, v) {
				return true
			}
		}
	case []float64:
		for _, item := range items {
			if strictEqual(item, v) {
				return true
			}
		}
	case []int:
		for _, item := range items {
			if strictEqual(item, v) {
				return true
			}
		}
	}
	return false
}
