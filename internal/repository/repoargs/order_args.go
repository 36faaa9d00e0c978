package repoargs

import (
	"time"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrderItem struct {
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

type CreateOrder struct {
	UserID       int64
	Total        decimal.Decimal
	DeliveryFee  decimal.Decimal
	BonusApplied int64
	Items        []CreateOrderItem
}

type UpdateOrderStatus struct {
	ID        int64
	Status    domain.OrderStatus
	PaidAt    *time.Time
	ShippedAt *time.Time
}
