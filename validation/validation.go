// Package validation holds the request schemas' rule engine. A Validator is
// built once at startup and evaluates every rule on a struct, reporting all
// failing fields together instead of stopping at the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	decimal2Pattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is the full list of field errors for one request.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the custom rules registered:
//
//	nohtml       string must not contain '<' or '>'
//	decimal2     decimal string with at most two fraction digits
//	decimal2=n   same, with at most n integer digits
//	utf8         string must be valid UTF-8
//	digits       string of ASCII digits only
//	intrange=a:b digit string whose integer value lies in [a, b]
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	mustRegister(v, "nohtml", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "<>")
	})
	mustRegister(v, "decimal2", validateDecimal2)
	mustRegister(v, "utf8", func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return digitsPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "intrange", validateIntRange)

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func validateDecimal2(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !decimal2Pattern.MatchString(s) {
		return false
	}
	if fl.Param() == "" {
		return true
	}
	maxDigits, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	whole, _, _ := strings.Cut(s, ".")
	return len(strings.TrimLeft(whole, "0")) <= maxDigits
}

func validateIntRange(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !digitsPattern.MatchString(s) {
		return false
	}
	lo, hi, ok := parseRange(fl.Param())
	if !ok {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}

func parseRange(param string) (int, int, bool) {
	parts := strings.SplitN(param, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(parts[0])
	hi, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// Struct validates s and returns Errors listing every failing field, or nil.
// Errors from a misconfigured schema are returned unchanged.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "nohtml":
		return fmt.Sprintf("%s must not contain HTML tags", field)
	case "decimal2":
		if fe.Param() != "" {
			return fmt.Sprintf("%s must be a decimal string with at most %s digits before and 2 after the decimal point", field, fe.Param())
		}
		return fmt.Sprintf("%s must be a decimal string with up to 2 digits after the decimal point", field)
	case "utf8":
		return fmt.Sprintf("%s must be valid UTF-8 text", field)
	case "digits":
		return fmt.Sprintf("%s must contain digits only", field)
	case "intrange":
		lo, hi, _ := parseRange(fe.Param())
		return fmt.Sprintf("%s must be an integer between %d and %d", field, lo, hi)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// Single builds a one-field Errors value for checks made outside a schema,
// such as a malformed path parameter.
func Single(field, rule, msg string) Errors {
	return Errors{{Field: field, Rule: rule, Message: msg}}
}
