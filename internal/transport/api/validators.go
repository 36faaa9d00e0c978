package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/osama-agency/telesklad/internal/domain"
)

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param() // получаем значение из тега
	maxBytes, err := strconv.Atoi(param)
	if err != nil {
		return false
	}

	// нужно убедится что значение поля - строка.
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len([]byte(str)) <= maxBytes
}

func validatePurchaseStatus(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && domain.PurchaseStatus(str).IsValid()
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && domain.OrderStatus(str).IsValid()
}

func validateJobType(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && domain.JobType(str).IsValid()
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}

	validators := map[string]validator.Func{
		"max_bytes":       validateMaxBytes,
		"purchase_status": validatePurchaseStatus,
		"order_status":    validateOrderStatus,
		"job_type":        validateJobType,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator registration `%s`: %s", tag, err.Error())
		}
	}
	return nil
}
