package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	models "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

// DiffVariables reports every key whose string form differs between a and b.
// Keys are the union of both maps; a missing key compares as "". Results are
// sorted by key so repeated comparisons render identically.
func DiffVariables(a, b models.Variables) []contractSvc.Difference {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	diffs := []contractSvc.Difference{}
	for _, k := range ordered {
		from := Stringify(a[k])
		to := Stringify(b[k])
		if from != to {
			diffs = append(diffs, contractSvc.Difference{Field: k, From: from, To: to})
		}
	}
	return diffs
}

// ChangedFields returns only the names of the differing keys
func ChangedFields(a, b models.Variables) []string {
	diffs := DiffVariables(a, b)
	out := make([]string, len(diffs))
	for i, d := range diffs {
		out[i] = d.Field
	}
	return out
}

// Stringify renders a variable value the way the comparison view prints it.
// Scalars follow loose string coercion, so 5 and "5" compare equal while 0,
// false and "" differ from each other. Lists join their elements with commas;
// objects use their JSON encoding.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return formatNumber(f)
		}
		return t.String()
	case []interface{}:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case map[string]interface{}, models.Variables:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
