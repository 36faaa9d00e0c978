package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
)

// MessageDeliverer отправляет покупателю сообщение, собранное из нагрузки задачи.
type MessageDeliverer struct {
	orders OrderReader
	sender Sender
	l      *logrus.Entry
}

func NewMessageDeliverer(orders OrderReader, sender Sender, l *logrus.Logger) *MessageDeliverer {
	return &MessageDeliverer{
		orders: orders,
		sender: sender,
		l: l.WithFields(logrus.Fields{
			"component": "jobrunner",
			"module":    "delivery",
		}),
	}
}

// RegisterAll назначает доставщика всем известным типам задач.
func (d *MessageDeliverer) RegisterAll(r *Runner) *Runner {
	for _, jobType := range domain.JobTypes {
		r.Register(jobType, d)
	}
	return r
}

// Deliver доставляет задачу. Напоминание об оплате заказа, который уже не ждет оплаты, считается доставленным
// без отправки.
func (d *MessageDeliverer) Deliver(ctx context.Context, job domain.NotificationJob) error {
	payload, err := domain.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if reminder, ok := payload.(*domain.PaymentReminderPayload); ok {
		skip, skipErr := d.reminderObsolete(ctx, reminder)
		if skipErr != nil {
			return skipErr
		}
		if skip {
			d.l.WithFields(logrus.Fields{
				"jobID":   job.ID,
				"orderID": reminder.OrderID,
			}).Info("payment reminder skipped, order is not awaiting payment")
			return nil
		}
	}

	chatID, err := d.orders.RecipientChatID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", job.UserID, ErrNoRecipient)
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}

	if _, sendErr := d.sender.Send(ctx, chatID, messageText(payload)); sendErr != nil {
		return fmt.Errorf("send %s: %w", job.Type, sendErr)
	}
	return nil
}

func (d *MessageDeliverer) reminderObsolete(ctx context.Context, p *domain.PaymentReminderPayload) (bool, error) {
	status, err := d.orders.OrderStatus(ctx, p.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("order %d status: %w", p.OrderID, err)
	}
	return status != domain.OrderStatusUnpaid, nil
}

func messageText(payload domain.JobPayload) string {
	switch p := payload.(type) {
	case *domain.PaymentReminderPayload:
		return fmt.Sprintf(
			"⏰ Напоминаем об оплате заказа #%d на сумму %s ₽. После оплаты нажмите «Я оплатил».",
			p.OrderID, p.Total.StringFixed(2), //nolint:mnd
		)
	case *domain.BonusNoticePayload:
		return fmt.Sprintf(
			"🎁 За заказ #%d начислено %d бонусов. Ваш баланс: %d.",
			p.OrderID, p.Amount, p.Balance,
		)
	case *domain.RestockNoticePayload:
		return fmt.Sprintf("✅ <b>%s</b> снова в наличии!", html.EscapeString(p.ProductName))
	case *domain.TierNoticePayload:
		return fmt.Sprintf(
			"🏆 Поздравляем! Ваш новый уровень: <b>%s</b>. Кешбэк теперь %d%%.",
			html.EscapeString(p.TierTitle), p.BonusPercent,
		)
	default:
		return ""
	}
}
