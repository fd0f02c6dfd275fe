// Package valuation derives per-holding and aggregate figures from a
// portfolio. Every function is pure and total: inputs that are not finite
// numbers count as 0, nothing panics and no NaN leaks into the results
package valuation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number returns x when it is finite and 0 otherwise
func Number(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// ParseNumber parses user input such as a form field. Surrounding spaces are
// ignored and a single comma is accepted as the decimal separator. A comma
// followed by exactly three digits after a non-zero integer part ("1,000")
// reads as a thousands separator and is rejected rather than guessed. Only
// plain decimal notation is accepted: no digit separators, hex or Inf.
//
// The second result is false when raw is not a finite number; the value is
// then 0. Callers that must tell "0" apart from garbage check it, callers that
// only do arithmetic can ignore it
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if ambiguousComma(s) {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.IndexFunc(s, notDecimal) >= 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func ambiguousComma(s string) bool {
	i := strings.IndexByte(s, ',')
	frac := s[i+1:]
	if len(frac) != 3 || strings.IndexFunc(frac, notDigit) >= 0 {
		return false
	}
	whole := strings.TrimLeft(s[:i], "+-")
	return strings.Trim(whole, "0") != ""
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}

func notDecimal(r rune) bool {
	switch r {
	case '.', '+', '-', 'e', 'E':
		return false
	}
	return notDigit(r)
}

// Coerce converts a decoded JSON value to a number. Numeric strings are
// parsed with ParseNumber; nil, booleans, objects and anything unparsable
// yield 0
func Coerce(v any) float64 {
	switch n := v.(type) {
	case float64:
		return Number(n)
	case float32:
		return Number(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := ParseNumber(n.String())
		return f
	case string:
		f, _ := ParseNumber(n)
		return f
	}
	return 0
}
