package repoargs

import "github.com/shopspring/decimal"

type CreateBonusLog struct {
	UserID     int64
	Amount     int64
	Reason     string
	SourceType string
	SourceID   int64
}

type CreateExpense struct {
	PurchaseID  *int64
	Category    string
	Amount      decimal.Decimal
	Description string
}
