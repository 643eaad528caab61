// Package validate holds the input checks shared by services and handlers:
// request struct validation and the money/date rules of the domain.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
)

// MoneyPlaces is the number of fractional digits a money amount may carry.
const MoneyPlaces = 2

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Struct runs the `validate` tags of s and reports failures as a
// *apperr.ValidationError keyed by json field names.
func Struct(s any) error {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	verr := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe), fe.Tag(), message(fe))
	}

	return verr
}

// fieldPath drops the top-level struct name from the namespace, so
// "createRequest.milestones[0].title" becomes "milestones[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid4", "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	}

	return "failed " + fe.Tag() + " check"
}

// Amount checks that d is a positive money amount with at most two
// fractional digits.
func Amount(verr *apperr.ValidationError, field string, d decimal.Decimal) {
	if !d.IsPositive() {
		verr.Add(field, "gt", "must be greater than 0")
		return
	}

	if !d.Equal(d.Truncate(MoneyPlaces)) {
		verr.Add(field, "scale", "must have at most 2 decimal places")
	}
}

// Date parses a YYYY-MM-DD calendar date. Impossible dates such as
// 2024-02-30 are rejected.
func Date(verr *apperr.ValidationError, field, s string) time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		verr.Add(field, "date", "must be a valid YYYY-MM-DD date")
		return time.Time{}
	}

	return t
}

// Email checks that s is a syntactically valid email address.
func Email(verr *apperr.ValidationError, field, s string) {
	if err := structValidator.Var(s, "required,email"); err != nil {
		verr.Add(field, "email", "must be a valid email address")
	}
}

// OptionalText trims s and maps blank values to nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
