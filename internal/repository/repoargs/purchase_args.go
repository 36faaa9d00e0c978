package repoargs

import "time"

type PurchaseItemReceipt struct {
	ItemID           int64
	ReceivedQuantity int64
	Difference       int64
}

type MarkPurchaseReceived struct {
	ID           int64
	ReceivedAt   time.Time
	DeliveryDays int64
	Notes        string
}

// StockChange остаток товара до и после оприходования.
type StockChange struct {
	ProductID   int64
	ProductName string
	Before      int64
	After       int64
}
