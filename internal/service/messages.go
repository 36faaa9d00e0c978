package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/osama-agency/telesklad/internal/domain"
)

var purchaseStatusTitles = map[domain.PurchaseStatus]string{
	domain.PurchaseStatusDraft:           "Черновик",
	domain.PurchaseStatusSent:            "Отправлена поставщику",
	domain.PurchaseStatusAwaitingPayment: "Ожидает оплаты",
	domain.PurchaseStatusPaid:            "Оплачена",
	domain.PurchaseStatusShipped:         "Отгружена",
	domain.PurchaseStatusReceived:        "Получена",
	domain.PurchaseStatusCancelled:       "Отменена",
}

var orderStatusTitles = map[domain.OrderStatus]string{
	domain.OrderStatusUnpaid:     "Не оплачен",
	domain.OrderStatusPaid:       "Оплачен",
	domain.OrderStatusProcessing: "В обработке",
	domain.OrderStatusShipped:    "Отправлен",
	domain.OrderStatusDelivered:  "Доставлен",
	domain.OrderStatusCancelled:  "Отменен",
}

// purchaseText карточка закупки для чата поставщика.
func purchaseText(p *domain.Purchase, status domain.PurchaseStatus) string {
	var b strings.Builder
	if p.Urgent {
		b.WriteString("🔥 ")
	}
	fmt.Fprintf(&b, "<b>Закупка #%d</b>\n", p.ID)
	fmt.Fprintf(&b, "Статус: %s\n\n", purchaseStatusTitles[status])
	for _, item := range p.Items {
		fmt.Fprintf(&b, "• %s × %d\n", html.EscapeString(item.ProductName), item.Quantity)
	}
	fmt.Fprintf(&b, "\nИтого: %s ₽", p.TotalAmount.StringFixed(2)) //nolint:mnd
	return b.String()
}

func purchaseStatusNotice(p *domain.Purchase, status domain.PurchaseStatus) string {
	return fmt.Sprintf("Закупка #%d: %s", p.ID, purchaseStatusTitles[status])
}

func orderAdminPaymentText(o *domain.Order) string {
	return fmt.Sprintf("💳 Покупатель сообщил об оплате заказа #%d на сумму %s ₽", o.ID, o.Total.StringFixed(2)) //nolint:mnd
}

func orderCourierText(o *domain.Order) string {
	return fmt.Sprintf("📦 Заказ #%d подтвержден, нужно собрать и отправить (%d поз.)", o.ID, len(o.Items))
}

func orderBuyerText(o *domain.Order, status domain.OrderStatus) string {
	switch status {
	case domain.OrderStatusProcessing:
		return fmt.Sprintf("Оплата заказа #%d подтверждена, заказ передан в сборку.", o.ID)
	case domain.OrderStatusShipped:
		return fmt.Sprintf("Заказ #%d отправлен.", o.ID)
	case domain.OrderStatusDelivered:
		return fmt.Sprintf("Заказ #%d доставлен. Спасибо за покупку!", o.ID)
	case domain.OrderStatusCancelled:
		return fmt.Sprintf("Заказ #%d отменен.", o.ID)
	default:
		return fmt.Sprintf("Заказ #%d: %s", o.ID, orderStatusTitles[status])
	}
}
