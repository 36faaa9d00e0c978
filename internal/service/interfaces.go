package service

import (
	"context"
	"time"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Messenger внешний канал доставки сообщений.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) (*domain.MessageHandle, error)
	Edit(ctx context.Context, handle domain.MessageHandle, text string) error
}

// ChatResolver определяет id служебного чата по его роли.
type ChatResolver interface {
	ChatID(ctx context.Context, role domain.ChatRole) (int64, error)
}

type PurchaseRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Purchase, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Purchase, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PurchaseStatus) error
	SetMessageHandle(ctx context.Context, id int64, handle domain.MessageHandle) error
	MarkReceived(ctx context.Context, args repoargs.MarkPurchaseReceived) error
	SaveItemReceipts(ctx context.Context, receipts []repoargs.PurchaseItemReceipt, fn repoargs.BatchExecQueryRow)
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	ReserveToTransit(ctx context.Context, productID, qty int64) error
	ReleaseFromTransit(ctx context.Context, productID, qty int64) (int64, error)
	CommitToStock(ctx context.Context, productID, qty int64) (*repoargs.StockChange, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error)
	AdjustBonusBalance(ctx context.Context, userID, delta int64) (int64, error)
	IncrementOrderCount(ctx context.Context, userID int64) (int64, error)
	UpdateTier(ctx context.Context, userID, tierID int64) error
}

type BonusLogRepository interface {
	Create(ctx context.Context, args repoargs.CreateBonusLog) (*domain.BonusLogEntry, error)
}

type JobRepository interface {
	Create(ctx context.Context, args repoargs.CreateJob) (*domain.NotificationJob, error)
	LockTarget(ctx context.Context, jobType domain.JobType, targetID int64) error
	CancelPending(ctx context.Context, jobType domain.JobType, targetID int64) (int64, error)
	ClaimDue(ctx context.Context, args repoargs.ClaimJobs) ([]domain.NotificationJob, error)
	MarkDone(ctx context.Context, id int64, owner string) error
	Reschedule(ctx context.Context, args repoargs.RescheduleJob) error
	MarkFailed(ctx context.Context, id int64, owner, lastErr string) error
	ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)
}

type ExpenseRepository interface {
	Create(ctx context.Context, args repoargs.CreateExpense) (*domain.Expense, error)
}

type SubscriptionRepository interface {
	SubscriberIDs(ctx context.Context, productID int64) ([]int64, error)
}
