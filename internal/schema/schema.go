package schema

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Check is a cross-field rule evaluated after the struct tags. It returns
// the issues it found, or nil.
type Check[T any] func(v T) []Issue

// Schema decodes and validates one entity row type.
type Schema[T any] struct {
	decode func(Form) T
	checks []Check[T]
}

// New returns a schema that decodes forms with decode and then applies the
// row's struct-tag constraints followed by checks, in order.
func New[T any](decode func(Form) T, checks ...Check[T]) *Schema[T] {
	return &Schema[T]{decode: decode, checks: checks}
}

// Result is the outcome of Parse. Data is always the decoded row; it is
// only meaningful when OK reports true.
type Result[T any] struct {
	Data   T
	Issues []Issue
}

// OK reports whether validation succeeded.
func (r Result[T]) OK() bool {
	return len(r.Issues) == 0
}

// Err returns a *ValidationError when validation failed, nil otherwise.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return NewValidationError(r.Issues)
}

// Parse decodes f and validates the result. It has no side effects and
// always returns the same classification for the same input.
func (s *Schema[T]) Parse(f Form) Result[T] {
	data := s.decode(f)
	issues := structIssues(data)
	for _, c := range s.checks {
		issues = append(issues, c(data)...)
	}
	return Result[T]{Data: data, Issues: issues}
}

// Validate is Parse reduced to field errors. An empty map means the form
// is valid.
func (s *Schema[T]) Validate(f Form) map[string]string {
	return Reduce(s.Parse(f).Issues)
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validate is shared by every schema; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// maxbytes bounds the encoded length of a string, where max counts runes.
	mustRegister(v, "maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("maxbytes: bad parameter %q", fl.Param()))
		}
		return len(fl.Field().String()) <= n
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

func structIssues(v any) []Issue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{RootIssue(err.Error())}
	}
	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{Path: fieldPath(fe), Message: message(fe)})
	}
	return issues
}

// fieldPath drops the root struct name from the error namespace, so
// "Address.zip_code" becomes ["zip_code"].
func fieldPath(fe validator.FieldError) []string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) <= 1 {
		return []string{fe.Field()}
	}
	return parts[1:]
}
