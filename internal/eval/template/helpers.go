package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aescanero/dago-node-render/pkg/controlflow"
	"github.com/aymerick/raymond"
)

// builtinHelpers returns the inline helpers every engine starts with
func builtinHelpers() map[string]interface{} {
	return map[string]interface{}{
		"uppercase": strings.ToUpper,
		"lowercase": strings.ToLower,
		"trim":      strings.TrimSpace,

		// coalesce returns the fallback when value is empty
		"coalesce": func(value interface{}, fallback interface{}) interface{} {
			if value == nil || value == "" {
				return fallback
			}
			return value
		},

		// eq and ne use the same coercive equality as ifEquals
		"eq": func(a, b interface{}) bool {
			return controlflow.LooseEqual(a, b)
		},
		"ne": func(a, b interface{}) bool {
			return !controlflow.LooseEqual(a, b)
		},

		"gt": func(a, b interface{}) bool {
			x, okX := number(a)
			y, okY := number(b)
			return okX && okY && x > y
		},
		"lt": func(a, b interface{}) bool {
			x, okX := number(a)
			y, okY := number(b)
			return okX && okY && x < y
		},

		"contains": strings.Contains,

		"join": func(arr []interface{}, sep string) string {
			strs := make([]string, len(arr))
			for i, v := range arr {
				strs[i] = fmt.Sprint(v)
			}
			return strings.Join(strs, sep)
		},

		"len": func(value interface{}) int {
			switch v := value.(type) {
			case string:
				return len(v)
			case []interface{}:
				return len(v)
			case map[string]interface{}:
				return len(v)
			default:
				return 0
			}
		},
	}
}

// number reads ints, floats and numeric strings alike
func number(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raymond.Str(v)), 64)
	return f, err == nil
}
