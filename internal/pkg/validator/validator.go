// Package validator wraps go-playground/validator with the project's error
// formatting and a few chain-specific tags:
//
//   - txid:   64 hexadecimal characters (Bitcoin transaction id)
//   - hash32: "0x" followed by 64 hexadecimal characters (Ethereum hash)
package validator

import (
	"errors"
	"fmt"
	"regexp"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error of the chain returned by Validate.
var ErrValidationFailed = errors.New("struct validation failed")

var validator *gvalidator.Validate

// errStringFormat describes one field failure, e.g.
// "'Txid': value '' does not meet the requirements for the 'required' validation".
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

var (
	txidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
	hash32Pattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]{64}$`)
)

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())

	mustRegisterPattern("txid", txidPattern)
	mustRegisterPattern("hash32", hash32Pattern)
}

func mustRegisterPattern(tag string, pattern *regexp.Regexp) {
	err := validator.RegisterValidation(tag, func(fl gvalidator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// formatError turns validator.ValidationErrors into ErrValidationFailed joined
// with one message per field. Other errors are returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
