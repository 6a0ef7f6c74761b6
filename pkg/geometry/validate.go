package geometry

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// paramsValidate is the shared validator instance for gear parameters.
var paramsValidate *validator.Validate

func init() {
	paramsValidate = validator.New()
	_ = paramsValidate.RegisterValidation("even", validateEven)
}

// validateEven accepts integer fields divisible by two.
func validateEven(fl validator.FieldLevel) bool {
	return fl.Field().Int()%2 == 0
}

// Validate checks the preconditions the mesh builder relies on but does not
// enforce itself. A nil return means Build produces a closed, symmetric gear.
// Three or more teeth with a positive module also guarantee a positive root
// diameter, so that invariant needs no separate check.
func (p Params) Validate() error {
	var errs []error

	if err := paramsValidate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("geometry: validate: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fieldError(fe))
		}
	}

	return errors.Join(errs...)
}

// fieldError renders a validator failure in terms of the gear vocabulary.
func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "gte":
		return fmt.Errorf("%s is %v, must be at least %s", fe.Field(), fe.Value(), fe.Param())
	case "gt":
		return fmt.Errorf("%s is %v, must be greater than %s", fe.Field(), fe.Value(), fe.Param())
	case "even":
		return fmt.Errorf("%s is %v, must be even", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q check", fe.Field(), fe.Tag())
	}
}
