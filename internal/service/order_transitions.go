package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

type orderTransitionKey struct {
	from domain.OrderStatus
	to   domain.OrderStatus
}

type orderTransition struct {
	order   *domain.Order
	from    domain.OrderStatus
	to      domain.OrderStatus
	now     time.Time
	update  repoargs.UpdateOrderStatus
	applied []domain.EffectKind
}

type orderEffect struct {
	kind  domain.EffectKind
	apply func(ctx context.Context, tx uow.TX, tc *orderTransition) (bool, error)
	after func(ctx context.Context, tc *orderTransition) (bool, error)
}

// transitionTable граф статусов заказа. Отмена возможна из любого нетерминального статуса и не возвращает
// списанные или начисленные бонусы.
func (s *OrderService) transitionTable() map[orderTransitionKey][]orderEffect {
	cancelReminder := orderEffect{kind: domain.EffectCancelJob, apply: s.cancelPaymentReminder}
	setPaidAt := orderEffect{kind: domain.EffectSetTimestamp, apply: s.setPaidAt}
	setShippedAt := orderEffect{kind: domain.EffectSetTimestamp, apply: s.setShippedAt}
	accrue := orderEffect{kind: domain.EffectAccrueBonus, apply: s.accrueLoyalty}
	notifyAdmin := orderEffect{kind: domain.EffectNotifyParty, after: s.notifyRole(domain.ChatRoleAdmin, orderAdminPaymentText)}
	notifyCourier := orderEffect{kind: domain.EffectNotifyParty, after: s.notifyRole(domain.ChatRoleCourier, orderCourierText)}
	notifyBuyer := orderEffect{kind: domain.EffectNotifyParty, after: s.notifyBuyer}

	t := map[orderTransitionKey][]orderEffect{
		{domain.OrderStatusUnpaid, domain.OrderStatusPaid}:        {cancelReminder, setPaidAt, notifyAdmin},
		{domain.OrderStatusPaid, domain.OrderStatusProcessing}:    {accrue, notifyBuyer, notifyCourier},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped}: {setShippedAt, notifyBuyer},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered}:  {notifyBuyer},
	}

	for _, from := range domain.OrderStatuses {
		if from.IsTerminal() {
			continue
		}
		t[orderTransitionKey{from, domain.OrderStatusCancelled}] = []orderEffect{cancelReminder, notifyBuyer}
	}
	return t
}

func (s *OrderService) cancelPaymentReminder(ctx context.Context, tx uow.TX, tc *orderTransition) (bool, error) {
	cancelled, err := s.notifications.CancelTx(ctx, tx, domain.JobTypePaymentReminder, tc.order.ID)
	if err != nil {
		return false, err
	}
	return cancelled > 0, nil
}

func (s *OrderService) setPaidAt(_ context.Context, _ uow.TX, tc *orderTransition) (bool, error) {
	tc.update.PaidAt = &tc.now
	return true, nil
}

func (s *OrderService) setShippedAt(_ context.Context, _ uow.TX, tc *orderTransition) (bool, error) {
	tc.update.ShippedAt = &tc.now
	return true, nil
}

// accrueLoyalty начисляет кешбэк, увеличивает счетчик заказов и повышает уровень. Выполняется в savepoint:
// сбой программы лояльности откатывает только ее изменения и не блокирует подтверждение заказа.
func (s *OrderService) accrueLoyalty(ctx context.Context, tx uow.TX, tc *orderTransition) (bool, error) {
	var applied, scheduled bool
	err := tx.Nested(ctx, func(c context.Context, sp uow.TX) error {
		applied, scheduled = false, false
		userRepo, err := txRepo[UserRepository](sp, repoargs.UserRepoName)
		if err != nil {
			return err
		}
		user, userErr := userRepo.FindByIDForUpdate(c, tc.order.UserID)
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		subtotal := tc.order.Subtotal()
		cashback := s.loyalty.ProcessOrderCashback(subtotal, s.loyalty.TierPercent(user))
		if cashback > 0 {
			res, addErr := s.loyalty.addBonusTx(c, sp, BonusArgs{
				UserID:     user.ID,
				Amount:     cashback,
				Reason:     domain.BonusReasonCashback,
				SourceType: domain.BonusSourceOrder,
				SourceID:   tc.order.ID,
			})
			if addErr != nil {
				return addErr
			}
			if !res.AlreadyApplied {
				if _, scheduleErr := s.notifications.ScheduleTx(c, sp, ScheduleArgs{
					TargetID: tc.order.ID,
					UserID:   user.ID,
					DueAt:    tc.now,
					Payload: domain.BonusNoticePayload{
						OrderID: tc.order.ID,
						Amount:  cashback,
						Balance: res.Balance,
					},
				}); scheduleErr != nil {
					return scheduleErr
				}
				applied, scheduled = true, true
			}
		}

		if !s.loyalty.Qualifies(subtotal) {
			return nil
		}
		count, countErr := userRepo.IncrementOrderCount(c, user.ID)
		if countErr != nil {
			return countErr //nolint:wrapcheck
		}
		applied = true

		change, tierErr := s.loyalty.checkAndUpgradeTierTx(c, sp, user, count)
		if tierErr != nil {
			return tierErr
		}
		if !change.Changed {
			return nil
		}
		if _, scheduleErr := s.notifications.ScheduleTx(c, sp, ScheduleArgs{
			TargetID: user.ID,
			UserID:   user.ID,
			DueAt:    tc.now,
			Payload: domain.TierNoticePayload{
				TierID:       change.To.ID,
				TierTitle:    change.To.Title,
				BonusPercent: change.To.BonusPercent,
			},
		}); scheduleErr != nil {
			return scheduleErr
		}
		scheduled = true
		return nil
	})
	if err != nil {
		s.l.WithError(err).WithFields(logrus.Fields{
			"orderID": tc.order.ID,
			"userID":  tc.order.UserID,
		}).Error("loyalty accrual rolled back")
		return false, nil
	}
	if scheduled {
		tc.applied = append(tc.applied, domain.EffectScheduleJob)
	}
	return applied, nil
}

func (s *OrderService) notifyRole(
	role domain.ChatRole,
	text func(o *domain.Order) string,
) func(ctx context.Context, tc *orderTransition) (bool, error) {
	return func(ctx context.Context, tc *orderTransition) (bool, error) {
		chatID, err := s.chats.ChatID(ctx, role)
		if err != nil {
			return false, err //nolint:wrapcheck
		}
		if _, sendErr := s.messenger.Send(ctx, chatID, text(tc.order)); sendErr != nil {
			return false, sendErr //nolint:wrapcheck
		}
		return true, nil
	}
}

func (s *OrderService) notifyBuyer(ctx context.Context, tc *orderTransition) (bool, error) {
	chatID, err := s.RecipientChatID(ctx, tc.order.UserID)
	if err != nil {
		return false, err
	}
	if _, sendErr := s.messenger.Send(ctx, chatID, orderBuyerText(tc.order, tc.to)); sendErr != nil {
		return false, sendErr //nolint:wrapcheck
	}
	return true, nil
}
