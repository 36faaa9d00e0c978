package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDeliveryFailure     = errors.New("delivery failure")
	ErrExhaustedRetries    = errors.New("exhausted retries")

	ErrInvalidPayload  = errors.New("invalid job payload")
	ErrUnknownItem     = errors.New("unknown purchase item")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrNotDeletable    = errors.New("purchase cannot be deleted")
	ErrClaimLost       = errors.New("job claim lost")
)

// TransitionError недопустимый переход статуса. Всегда оборачивает ErrInvalidTransition.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func NewTransitionError(entity, from, to string) error {
	return &TransitionError{Entity: entity, From: from, To: to}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %s", e.Entity, e.From, e.To, ErrInvalidTransition.Error())
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// DeliveryError ошибка доставки сообщения через внешний канал. RetryAfter заполняется, если канал попросил
// повторить не раньше указанного интервала.
type DeliveryError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func NewDeliveryError(statusCode int, retryAfter time.Duration, err error) *DeliveryError {
	return &DeliveryError{StatusCode: statusCode, RetryAfter: retryAfter, Err: err}
}

func (e *DeliveryError) Error() string {
	msg := ErrDeliveryFailure.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status code %d", msg, e.StatusCode)
	}
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s: retry after %.f seconds", msg, e.RetryAfter.Seconds())
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *DeliveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDeliveryFailure}
	}
	return []error{ErrDeliveryFailure, e.Err}
}
