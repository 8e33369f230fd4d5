package guided

import (
	"fmt"
	"strconv"
	"strings"

	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/service/contract"
)

// Condition is a compiled predicate over the values collected so far
type Condition func(values contractModels.Variables) bool

func always(contractModels.Variables) bool { return true }

// comparison operators, longest first so ">=" wins over ">"
var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// CompileCondition turns an expression into a predicate.
//
//	field                 field is truthy
//	!field                field is falsy
//	field == wedding      loose string equality (also !=)
//	hours >= 6            numeric comparison (>, >=, <, <=)
//	a && b || c           && binds tighter than ||
//
// An empty expression always holds.
func CompileCondition(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return always, nil
	}

	var anyOf []Condition
	for _, alt := range strings.Split(expr, "||") {
		var allOf []Condition
		for _, term := range strings.Split(alt, "&&") {
			c, err := compileTerm(strings.TrimSpace(term))
			if err != nil {
				return nil, fmt.Errorf("condition %q: %w", expr, err)
			}
			allOf = append(allOf, c)
		}
		anyOf = append(anyOf, func(v contractModels.Variables) bool {
			for _, c := range allOf {
				if !c(v) {
					return false
				}
			}
			return true
		})
	}

	return func(v contractModels.Variables) bool {
		for _, c := range anyOf {
			if c(v) {
				return true
			}
		}
		return false
	}, nil
}

func compileTerm(term string) (Condition, error) {
	if term == "" {
		return nil, fmt.Errorf("empty term")
	}

	for _, op := range operators {
		i := strings.Index(term, op)
		if i < 0 {
			continue
		}
		field := strings.TrimSpace(term[:i])
		literal := unquote(strings.TrimSpace(term[i+len(op):]))
		if !validFieldName(field) {
			return nil, fmt.Errorf("bad field name %q", field)
		}
		return comparison(field, op, literal)
	}

	negate := false
	if strings.HasPrefix(term, "!") {
		negate = true
		term = strings.TrimSpace(term[1:])
	}
	if !validFieldName(term) {
		return nil, fmt.Errorf("bad field name %q", term)
	}
	field := term
	return func(v contractModels.Variables) bool {
		return truthy(v[field]) != negate
	}, nil
}

func comparison(field, op, literal string) (Condition, error) {
	switch op {
	case "==":
		return func(v contractModels.Variables) bool {
			return strings.EqualFold(contract.Stringify(v[field]), literal)
		}, nil
	case "!=":
		return func(v contractModels.Variables) bool {
			return !strings.EqualFold(contract.Stringify(v[field]), literal)
		}, nil
	}

	want, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, fmt.Errorf("%s needs a number, got %q", op, literal)
	}
	return func(v contractModels.Variables) bool {
		got, ok := number(v[field])
		if !ok {
			return false
		}
		switch op {
		case ">":
			return got > want
		case ">=":
			return got >= want
		case "<":
			return got < want
		default:
			return got <= want
		}
	}, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	case []interface{}:
		return len(t) > 0
	}
	if n, ok := number(v); ok {
		return n != 0
	}
	return true
}

func number(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func validFieldName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
