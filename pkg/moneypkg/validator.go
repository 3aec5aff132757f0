package moneypkg

import "github.com/go-playground/validator/v10"

// ValidAmount validates that a string field parses as a positive money amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	m, err := Parse(s)
	if err != nil {
		return false
	}

	return m.IsPositive()
}
