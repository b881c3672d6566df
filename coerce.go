package llmcatalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberValue returns v as a float64 when v already holds a number.
// Strings are not parsed.
func NumberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToNumber converts numbers and numeric strings to a finite float64.
// Anything else, including NaN and infinities, yields 0.
func ToNumber(v any) float64 {
	var f float64
	if s, ok := v.(string); ok {
		f = parseNumeric(s)
	} else if n, ok := NumberValue(v); ok {
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ToStringArray returns the string form of every element of an array value,
// or an empty slice when v is not an array.
func ToStringArray(v any) []string {
	switch arr := v.(type) {
	case []string:
		return cloneStrings(arr)
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			out = append(out, stringOf(item))
		}
		return out
	}
	return []string{}
}

// ToBoolean returns booleans unchanged, treats strings as true only when they
// spell "true" in any case, and falls back to truthiness for everything else.
func ToBoolean(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return strings.ToLower(b) == "true"
	}
	if n, ok := NumberValue(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	}
	if n, ok := NumberValue(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// toCount truncates f toward zero into [0, math.MaxInt64].
func toCount(f float64) int64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(f)
}
