package lang

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// parseNumber parses s as a float, NaN when s is not numeric. Empty or blank
// strings are 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// valueAttr returns a structured logging attribute describing v.
func valueAttr(key string, v Value) slog.Attr {
	if v == nil {
		return slog.String(key, "null")
	}

	attrs := []any{
		slog.String("type", v.Type()),
		slog.String("value", Raw(v).String()),
	}

	if a, ok := v.(*Annotated); ok {
		attrs = append(attrs,
			slog.String("class", string(a.Class)),
			slog.Float64("confidence", a.Confidence),
			slog.Float64("uncertainty", a.Uncertainty),
		)
	}

	return slog.Group(key, attrs...)
}
