package jobrunner

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/osama-agency/telesklad/internal/domain"
)

// Servicer очередь задач уведомлений.
type Servicer interface {
	ClaimDueJobs(ctx context.Context, owner string, limit uint) ([]domain.NotificationJob, error)
	CompleteJob(ctx context.Context, id int64, owner string) error
	RetryJob(ctx context.Context, id int64, owner string, at time.Time, cause error) error
	FailJob(ctx context.Context, id int64, owner string, cause error) error
	ReleaseStaleJobs(ctx context.Context, lease time.Duration) (int64, error)
}

// Deliverer доставляет задачу одного или нескольких типов.
type Deliverer interface {
	Deliver(ctx context.Context, job domain.NotificationJob) error
}

// OrderReader данные заказов и покупателей, нужные для доставки уведомлений.
type OrderReader interface {
	OrderStatus(ctx context.Context, orderID int64) (domain.OrderStatus, error)
	RecipientChatID(ctx context.Context, userID int64) (int64, error)
}

type Sender interface {
	Send(ctx context.Context, chatID int64, text string) (*domain.MessageHandle, error)
}
