package api

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Domenick1991/goaero/internal/domain"
)

var (
	flightCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)
	registerOnce      sync.Once
)

var flightCodeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	code, ok := fl.Field().Interface().(string)
	return ok && flightCodePattern.MatchString(code)
}

// moneyValidatorFunc accepts positive decimal amounts such as "250.00".
var moneyValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	cents, err := domain.ParseCents(amount)
	return err == nil && cents > 0
}

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("flightcode", flightCodeValidatorFunc)
			_ = v.RegisterValidation("money", moneyValidatorFunc)
		}
	})
}
