package guided

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"studioflow/internal/config"
)

// Question types understood by the catalog
const (
	TypeText    = "text"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeChoice  = "choice"
	TypeDate    = "date"
	TypeEmail   = "email"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "January 2, 2006", "Jan 2, 2006"}

// answerError is shown to the user; the question is asked again
type answerError struct{ msg string }

func (e *answerError) Error() string { return e.msg }

func rejectf(format string, args ...interface{}) error {
	return &answerError{msg: fmt.Sprintf(format, args...)}
}

// Coerce converts a raw answer into the value stored for q.Field
func Coerce(q *Question, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	if err := validation.Validate(raw, validation.Length(0, config.MaxGuidedAnswerLength)); err != nil {
		return nil, rejectf("That answer is too long (%d characters max).", config.MaxGuidedAnswerLength)
	}

	switch q.Type {
	case TypeNumber:
		cleaned := strings.NewReplacer("$", "", ",", "", "%", "").Replace(raw)
		f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return nil, rejectf("Please answer with a number.")
		}
		return f, nil

	case TypeBoolean:
		if isTrueFalse(q.Options) {
			switch strings.ToLower(raw) {
			case "true", "yes", "y":
				return true, nil
			case "false", "no", "n":
				return false, nil
			}
			return nil, rejectf("Please answer yes or no.")
		}
		return matchOption(q, raw)

	case TypeDate:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, raw); err == nil {
				return d.Format("January 2, 2006"), nil
			}
		}
		return nil, rejectf("Please enter a date like 2025-06-14.")

	case TypeEmail:
		if err := validation.Validate(raw, validation.Required, is.EmailFormat); err != nil {
			return nil, rejectf("That doesn't look like an email address.")
		}
		return raw, nil
	}

	if len(q.Options) > 0 {
		return matchOption(q, raw)
	}
	return raw, nil
}

func matchOption(q *Question, raw string) (interface{}, error) {
	if len(q.Options) == 0 {
		return raw, nil
	}
	for _, opt := range q.Options {
		if strings.EqualFold(opt, raw) {
			return opt, nil
		}
	}
	return nil, rejectf("Please choose one of: %s.", strings.Join(q.Options, ", "))
}

// isTrueFalse reports whether options are exactly {"true", "false"}
func isTrueFalse(options []string) bool {
	if len(options) != 2 {
		return false
	}
	sorted := []string{strings.ToLower(options[0]), strings.ToLower(options[1])}
	sort.Strings(sorted)
	return sorted[0] == "false" && sorted[1] == "true"
}
