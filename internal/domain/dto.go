package domain

type PurchaseStatus string

const (
	PurchaseStatusDraft           PurchaseStatus = "draft"
	PurchaseStatusSent            PurchaseStatus = "sent"
	PurchaseStatusAwaitingPayment PurchaseStatus = "awaiting_payment"
	PurchaseStatusPaid            PurchaseStatus = "paid"
	PurchaseStatusShipped         PurchaseStatus = "shipped"
	PurchaseStatusReceived        PurchaseStatus = "received"
	PurchaseStatusCancelled       PurchaseStatus = "cancelled"
)

// PurchaseStatuses все известные статусы закупки в порядке жизненного цикла.
var PurchaseStatuses = []PurchaseStatus{
	PurchaseStatusDraft,
	PurchaseStatusSent,
	PurchaseStatusAwaitingPayment,
	PurchaseStatusPaid,
	PurchaseStatusShipped,
	PurchaseStatusReceived,
	PurchaseStatusCancelled,
}

func (s PurchaseStatus) IsValid() bool {
	for _, st := range PurchaseStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// HoldsReservation сообщает, удерживает ли закупка в этом статусе товар в транзите. Единственный источник правды
// для резервирования и снятия транзитных остатков.
func (s PurchaseStatus) HoldsReservation() bool {
	switch s {
	case PurchaseStatusSent, PurchaseStatusAwaitingPayment, PurchaseStatusPaid, PurchaseStatusShipped:
		return true
	default:
		return false
	}
}

func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusReceived || s == PurchaseStatusCancelled
}

// IsDeletable физически удалить можно только черновик или отмененную закупку.
func (s PurchaseStatus) IsDeletable() bool {
	return s == PurchaseStatusDraft || s == PurchaseStatusCancelled
}

type OrderStatus string

const (
	OrderStatusUnpaid     OrderStatus = "unpaid"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusUnpaid,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type JobType string

const (
	JobTypePaymentReminder JobType = "payment_reminder"
	JobTypeBonusNotice     JobType = "bonus_notice"
	JobTypeRestockNotice   JobType = "restock_notice"
	JobTypeTierNotice      JobType = "tier_notice"
)

var JobTypes = []JobType{
	JobTypePaymentReminder,
	JobTypeBonusNotice,
	JobTypeRestockNotice,
	JobTypeTierNotice,
}

func (t JobType) IsValid() bool {
	for _, jt := range JobTypes {
		if jt == t {
			return true
		}
	}
	return false
}

// IsReminder для напоминаний допускается не более одной ожидающей задачи на пару (тип, цель).
func (t JobType) IsReminder() bool {
	return t == JobTypePaymentReminder
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusCancelled || s == JobStatusFailed
}

// EffectKind вид побочного эффекта перехода статуса.
type EffectKind string

const (
	EffectReserveTransit EffectKind = "reserve_transit"
	EffectReleaseTransit EffectKind = "release_transit"
	EffectCommitStock    EffectKind = "commit_stock"
	EffectRecordExpense  EffectKind = "record_expense"
	EffectSendMessage    EffectKind = "send_message"
	EffectEditMessage    EffectKind = "edit_message"
	EffectNotifyParty    EffectKind = "notify_party"
	EffectScheduleJob    EffectKind = "schedule_job"
	EffectCancelJob      EffectKind = "cancel_job"
	EffectAccrueBonus    EffectKind = "accrue_bonus"
	EffectSetTimestamp   EffectKind = "set_timestamp"
)

// ChatRole служебный чат, куда уходят уведомления.
type ChatRole string

const (
	ChatRoleAdmin    ChatRole = "admin"
	ChatRoleCourier  ChatRole = "courier"
	ChatRoleSupplier ChatRole = "supplier"
)

const (
	BonusSourceOrder  = "order"
	BonusSourceManual = "manual"

	BonusReasonCashback = "order_cashback"
)
