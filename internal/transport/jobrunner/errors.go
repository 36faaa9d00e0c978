package jobrunner

import (
	"errors"

	"github.com/osama-agency/telesklad/internal/domain"
)

var (
	ErrNoDeliverer = errors.New("no deliverer for job type")
	ErrNoRecipient = errors.New("recipient not found")
)

// isPermanent ошибки, повтор при которых ничего не изменит.
func isPermanent(err error) bool {
	return errors.Is(err, ErrNoDeliverer) ||
		errors.Is(err, ErrNoRecipient) ||
		errors.Is(err, domain.ErrInvalidPayload)
}
