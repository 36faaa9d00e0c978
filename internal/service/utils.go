package service

import (
	"context"
	"math"
	"time"

	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const defaultMessageTimeout = 10 * time.Second

// txRepo достает из транзакции репозиторий нужного типа.
func txRepo[T any](tx uow.TX, name repoargs.RepositoryName) (T, error) {
	return uow.GetAs[T](tx, uow.RepositoryName(name)) //nolint:wrapcheck
}

// connRepo достает репозиторий, работающий вне транзакции.
func connRepo[T any](u uow.UOW, name repoargs.RepositoryName) (T, error) {
	return uow.GetRepositoryAs[T](u, uow.RepositoryName(name)) //nolint:wrapcheck
}

// messageContext контекст для отправки сообщений после коммита. Отмена запроса не должна обрывать уже
// начатую доставку, поэтому контекст отвязан от родительского и ограничен собственным таймаутом.
func messageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// deliveryDays число полных или начатых суток между созданием и приемкой, не меньше 0.
func deliveryDays(createdAt, receivedAt time.Time) int64 {
	d := receivedAt.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Hours() / 24)) //nolint:mnd
}
