package jobrunner

import (
	"errors"
	"time"

	expbackoff "github.com/cenkalti/backoff/v4"

	"github.com/osama-agency/telesklad/internal/domain"
)

const (
	maxBackoff                 = time.Hour
	backoffRandomizationFactor = 0.15
	backoffMultiplier          = 2
)

// backoff задержка перед попыткой attempt+1: base * 2^(attempt-1) с разбросом ±15%, не больше maxBackoff.
// Если мессенджер сам сообщил, через сколько повторить, задержка не меньше этого значения.
func backoff(attempt int, base time.Duration, cause error) time.Duration {
	b := expbackoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = backoffRandomizationFactor
	b.Multiplier = backoffMultiplier
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	var d time.Duration
	for range max(attempt, 1) {
		d = b.NextBackOff()
	}
	// разброс считается от уже ограниченного интервала и может выйти за потолок.
	d = min(d, maxBackoff)

	var deliveryErr *domain.DeliveryError
	if errors.As(cause, &deliveryErr) && deliveryErr.RetryAfter > d {
		d = deliveryErr.RetryAfter
	}
	return d
}
