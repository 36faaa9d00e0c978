package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/osama-agency/telesklad/internal/domain"
)

// moneyScale знаков после запятой в денежных суммах ответа.
const moneyScale = 2

var errInvalidID = errors.New("invalid id")

// paramID разбирает положительный целочисленный параметр пути.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s `%s`: %w", name, c.Param(name), errInvalidID)
	}
	return id, nil
}

// abortWithServiceError переводит ошибку сервиса в http статус. Текст доменных ошибок отдается клиенту,
// остальные ошибки скрываются.
func abortWithServiceError(c *gin.Context, err error) {
	status := serviceErrorStatus(err)
	errType := gin.ErrorTypePublic
	if status == http.StatusInternalServerError {
		errType = gin.ErrorTypePrivate
	}
	_ = c.AbortWithError(status, err).SetType(errType)
}

func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotDeletable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// abortWithBindError ошибки валидации отдаются как 422, ошибки разбора тела как 400.
func abortWithBindError(c *gin.Context, bindErr error) {
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
		return
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).
		SetType(gin.ErrorTypeBind)
}

func effectNames(effects []domain.EffectKind) []string {
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = string(e)
	}
	return names
}
