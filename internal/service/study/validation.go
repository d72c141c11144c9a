package study

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/kioku/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateBatch checks the batch shape once, before any side effect.
func validateBatch(batch Batch, maxSize int) error {
	if len(batch.Reviews) == 0 {
		return domain.NewValidationError("reviewHistory", "at least one review is required")
	}
	if maxSize > 0 && len(batch.Reviews) > maxSize {
		return domain.NewValidationError("reviewHistory",
			fmt.Sprintf("at most %d reviews can be submitted at once", maxSize))
	}

	err := validate.Struct(batch)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	first := verrs[0]
	return domain.NewValidationError(fieldPath(first.Namespace()), describe(first))
}

// fieldPath drops the root struct name from a validator namespace, turning
// "Batch.reviewHistory[1].quality" into "reviewHistory[1].quality".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if fe.Field() == "reviewHistory" {
			return "at least one review is required"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
