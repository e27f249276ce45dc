package platform

import (
	"math"
	"strconv"
	"strings"
)

// Decoded payloads carry numbers as float64 and may come from codecs that
// use other numeric or map types, so argument access goes through these.

// intArg reads an integer, accepting whole floats and numeric strings.
func intArg(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatArg(float64(n))
	case float64:
		return floatArg(n)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return parsed, err == nil
	}
	return 0, false
}

func floatArg(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// stringArg reads a string. Numbers are formatted; other types read as "".
func stringArg(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case interface{ String() string }:
		return s.String()
	}
	return ""
}

// boolArg reads a bool; the string "true" counts as true.
func boolArg(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

// mapArg reads an object, dropping non-string keys.
func mapArg(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if key, ok := k.(string); ok {
				out[key] = val
			}
		}
		return out
	}
	return nil
}
