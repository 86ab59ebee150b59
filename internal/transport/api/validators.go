package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validateDecimalGtZero проверяет, что сумма строго положительна. Тэг gt тут не
// подходит: decimal.Decimal для валидатора непрозрачная структура.
func validateDecimalGtZero(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return value.IsPositive()
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)
	if err := v.RegisterValidation("decimal_gt_zero", validateDecimalGtZero); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
