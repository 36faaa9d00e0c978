package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
	"github.com/osama-agency/telesklad/internal/transport/jobrunner"
)

type PurchaseServicer interface {
	Transition(ctx context.Context, id int64, to domain.PurchaseStatus) (*service.PurchaseTransitionResult, error)
	Receive(ctx context.Context, id int64, args service.ReceiveArgs) (*service.ReceiveResult, error)
	Delete(ctx context.Context, id int64) error
}

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	Transition(ctx context.Context, id int64, to domain.OrderStatus) (*service.OrderTransitionResult, error)
}

type NotificationServicer interface {
	Schedule(ctx context.Context, args service.ScheduleArgs) (*domain.NotificationJob, error)
	Cancel(ctx context.Context, jobType domain.JobType, targetID int64) (int64, error)
}

type LoyaltyServicer interface {
	AddBonus(ctx context.Context, args service.BonusArgs) (*service.BonusResult, error)
	DeductBonus(ctx context.Context, args service.BonusArgs) (*service.BonusResult, error)
	CheckAndUpgradeTier(ctx context.Context, userID, orderCount int64) (*service.TierChange, error)
}

type JobProcessor interface {
	ProcessDueJobs(ctx context.Context) (*jobrunner.Result, error)
}
