package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// JobPayload полезная нагрузка отложенной задачи. Каждому типу задачи соответствует своя структура.
type JobPayload interface {
	JobType() JobType
}

type PaymentReminderPayload struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

func (PaymentReminderPayload) JobType() JobType { return JobTypePaymentReminder }

type BonusNoticePayload struct {
	OrderID int64 `json:"order_id"`
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

func (BonusNoticePayload) JobType() JobType { return JobTypeBonusNotice }

type RestockNoticePayload struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
}

func (RestockNoticePayload) JobType() JobType { return JobTypeRestockNotice }

type TierNoticePayload struct {
	TierID       int64  `json:"tier_id"`
	TierTitle    string `json:"tier_title"`
	BonusPercent int64  `json:"bonus_percent"`
}

func (TierNoticePayload) JobType() JobType { return JobTypeTierNotice }

// EncodePayload сериализует нагрузку в JSON.
func EncodePayload(p JobPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("encode payload: %w", ErrInvalidPayload)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w: %s", p.JobType(), ErrInvalidPayload, err.Error())
	}
	return raw, nil
}

// DecodePayload восстанавливает типизированную нагрузку по типу задачи. Для неизвестного типа или битого JSON
// возвращает ошибку, оборачивающую ErrInvalidPayload.
func DecodePayload(jobType JobType, raw []byte) (JobPayload, error) {
	var p JobPayload
	switch jobType {
	case JobTypePaymentReminder:
		p = new(PaymentReminderPayload)
	case JobTypeBonusNotice:
		p = new(BonusNoticePayload)
	case JobTypeRestockNotice:
		p = new(RestockNoticePayload)
	case JobTypeTierNotice:
		p = new(TierNoticePayload)
	default:
		return nil, fmt.Errorf("decode payload of type `%s`: %w", jobType, ErrInvalidPayload)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w: %s", jobType, ErrInvalidPayload, err.Error())
	}
	return p, nil
}
