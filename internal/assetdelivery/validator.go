package assetdelivery

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidDecimal validates whether the field holds a decimal number.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := decimal.NewFromString(s)
		return err == nil
	}
	return false
}
