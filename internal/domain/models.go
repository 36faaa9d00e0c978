package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MessageHandle ссылка на отправленное в мессенджер сообщение, нужна для последующего редактирования.
type MessageHandle struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type Purchase struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SupplierID    int64
	Status        PurchaseStatus
	TotalAmount   decimal.Decimal
	Urgent        bool
	MessageHandle *MessageHandle
	ReceivedAt    *time.Time
	DeliveryDays  *int64
	Notes         string
	Items         []PurchaseItem
}

type PurchaseItem struct {
	ID               int64
	PurchaseID       int64
	ProductID        int64
	ProductName      string
	Quantity         int64
	ReceivedQuantity *int64
	Difference       *int64
	UnitCostRub      decimal.Decimal
	UnitCostTry      decimal.Decimal
}

type Product struct {
	ID                int64
	Name              string
	StockQuantity     int64
	InTransitQuantity int64
}

type Order struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       int64
	Status       OrderStatus
	Total        decimal.Decimal
	DeliveryFee  decimal.Decimal
	BonusApplied int64
	PaidAt       *time.Time
	ShippedAt    *time.Time
	Items        []OrderItem
}

// Subtotal сумма заказа без стоимости доставки.
func (o *Order) Subtotal() decimal.Decimal {
	return o.Total.Sub(o.DeliveryFee)
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

type User struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TelegramID   int64
	Username     string
	BonusBalance int64
	TierID       int64
	OrderCount   int64
}

type BonusLogEntry struct {
	ID         int64
	CreatedAt  time.Time
	UserID     int64
	Amount     int64
	Reason     string
	SourceType string
	SourceID   int64
}

type NotificationJob struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Type        JobType
	TargetID    int64
	UserID      int64
	ScheduledAt time.Time
	Payload     []byte
	Status      JobStatus
	Attempts    int
	LastError   string
	ClaimedBy   string
	ClaimedAt   *time.Time
}

type Expense struct {
	ID          int64
	CreatedAt   time.Time
	PurchaseID  *int64
	Category    string
	Amount      decimal.Decimal
	Description string
}
