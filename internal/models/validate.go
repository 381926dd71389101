package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned for malformed or rule-breaking input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct runs tag validation on s and flattens the result into a ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalidf("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Msg: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ValidateForm checks tag rules and the question invariants.
func ValidateForm(f *Form) error {
	if err := Struct(f); err != nil {
		return err
	}
	if strings.TrimSpace(f.Title) == "" {
		return Invalidf("title is required")
	}
	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		if seen[q.ID] {
			return Invalidf("questions[%d].id %q is duplicated", i, q.ID)
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Title) == "" {
			return Invalidf("questions[%d].title is required", i)
		}

		if q.Type.IsChoice() {
			n := 0
			for _, o := range q.Options {
				if strings.TrimSpace(o) != "" {
					n++
				}
			}
			if n < 2 {
				return Invalidf("questions[%d].options needs at least 2 entries for %s questions", i, q.Type)
			}
		}
		if q.AIPrompt != nil && q.Type != QuestionLongText {
			return Invalidf("questions[%d].aiPrompt is only allowed on long-text questions", i)
		}
	}
	return nil
}

// ValidateAnswers checks a raw answer map against the form's questions.
func ValidateAnswers(f *Form, answers map[string]any) error {
	for key := range answers {
		if _, ok := f.Question(key); !ok {
			return Invalidf("unknown question id: %s", key)
		}
	}
	for _, q := range f.Questions {
		val, ok := answers[q.ID]
		if !ok || isEmptyAnswer(val) {
			if q.Required {
				return Invalidf("required question missing: %s", q.Title)
			}
			continue
		}
		if err := checkAnswerType(q, val); err != nil {
			return err
		}
	}
	return nil
}

func isEmptyAnswer(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

func checkAnswerType(q Question, val any) error {
	switch q.Type {
	case QuestionSingleChoice:
		s, ok := val.(string)
		if !ok || !contains(q.Options, s) {
			return Invalidf("answer to %q must be one of its options", q.Title)
		}
	case QuestionMultiChoice:
		items, ok := toStrings(val)
		if !ok {
			return Invalidf("answer to %q must be a list of options", q.Title)
		}
		for _, s := range items {
			if !contains(q.Options, s) {
				return Invalidf("answer to %q contains unknown option %q", q.Title, s)
			}
		}
	case QuestionShortText, QuestionLongText:
		if _, ok := val.(string); !ok {
			return Invalidf("answer to %q must be text", q.Title)
		}
	case QuestionNumber:
		if !isNumeric(val) {
			return Invalidf("answer to %q must be a number", q.Title)
		}
	case QuestionDate:
		s, ok := val.(string)
		if !ok || !isDate(s) {
			return Invalidf("answer to %q must be a date (YYYY-MM-DD)", q.Title)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toStrings(val any) ([]string, bool) {
	switch x := val.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func isNumeric(val any) bool {
	switch x := val.(type) {
	case float64, float32, int, int64, int32:
		return true
	case json.Number:
		_, err := x.Float64()
		return err == nil
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil
	}
	return false
}

func isDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ValidateEmail checks a single optional email address.
func ValidateEmail(field, email string) error {
	if email == "" {
		return nil
	}
	if err := validate.Var(email, "email"); err != nil {
		return Invalidf("%s must be a valid email", field)
	}
	return nil
}
