// Package validation turns struct tags on request DTOs into the
// human-readable messages returned to callers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

const (
	MaxSerialNumber = 100
	MaxDescription  = 200
	MaxCode         = 100
	MaxName         = 200
	MaxPersonName   = 100
	MaxUserName     = 100
	MaxEmail        = 256
	MaxPassword     = 256
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
	return v
}

// Check validates v and returns one message per failing field, in struct
// order. An empty result means v is valid.
func Check(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	seen := make(map[string]struct{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := Message(fe)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		messages = append(messages, msg)
	}
	return messages
}

// Struct validates v and returns a validation error carrying every message,
// or nil when v is valid.
func Struct(v any) error {
	if messages := Check(v); len(messages) > 0 {
		return pkgerrors.Validation(messages)
	}
	return nil
}

// Message renders a single field error.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required.", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be a positive id.", field)
	case "email":
		return "Invalid email address."
	}
	return fmt.Sprintf("%s is invalid.", field)
}

// IsEmail reports whether value is a well-formed email address.
func IsEmail(value string) bool {
	return validate.Var(value, "required,email") == nil
}
