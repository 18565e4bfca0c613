package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name, which is what clients sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("constname", constName); err != nil {
		panic(err)
	}
	return v
}

var fieldMessages = map[string]string{
	"required":       "The field '%s' is required.",
	"email":          "The field '%s' must be a valid email address.",
	"min":            "The field '%s' must be at least %s characters long.",
	"max":            "The field '%s' must be no longer than %s characters.",
	"strongpassword": "The field '%s' must contain an uppercase letter, a lowercase letter, a digit and a special character.",
	"constname":      "The field '%s' must be upper case letters, digits and underscores.",
	"dive":           "The field '%s' contains an invalid entry.",
}

// validateStruct runs the struct tags on s and converts failures into a
// ValidationError carrying msg.
func validateStruct(s any, msg string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Message: msg, Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	tmpl, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", fe.Field(), fe.Tag())
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(tmpl, fe.Field())
}

func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// constName accepts identifiers like GET_MARKET_DATA.
func constName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
