package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

type purchaseTransitionKey struct {
	from domain.PurchaseStatus
	to   domain.PurchaseStatus
}

// purchaseTransition состояние одного перехода, общее для всех его эффектов.
type purchaseTransition struct {
	purchase *domain.Purchase
	from     domain.PurchaseStatus
	to       domain.PurchaseStatus
	now      time.Time
	receive  *ReceiveArgs
	receipt  *ReceiveResult
	applied  []domain.EffectKind
}

// purchaseEffect побочный эффект перехода. apply выполняется в транзакции смены статуса и откатывается вместе с
// ней, after выполняется после коммита. Возвращаемый bool сообщает, был ли эффект применен.
type purchaseEffect struct {
	kind  domain.EffectKind
	apply func(ctx context.Context, tx uow.TX, tc *purchaseTransition) (bool, error)
	after func(ctx context.Context, tc *purchaseTransition) (bool, error)
}

// transitionTable граф статусов закупки с упорядоченными эффектами каждого ребра. Резервирование транзита
// снимается при отмене и приемке только для статусов, где domain.PurchaseStatus.HoldsReservation.
func (s *PurchaseService) transitionTable() map[purchaseTransitionKey][]purchaseEffect {
	reserve := purchaseEffect{kind: domain.EffectReserveTransit, apply: s.reserveTransit}
	release := purchaseEffect{kind: domain.EffectReleaseTransit, apply: s.releaseTransit}
	commit := purchaseEffect{kind: domain.EffectCommitStock, apply: s.commitReceived}
	expense := purchaseEffect{kind: domain.EffectRecordExpense, apply: s.recordExpense}
	sendNew := purchaseEffect{kind: domain.EffectSendMessage, after: s.sendNewPurchaseMessage}
	edit := purchaseEffect{kind: domain.EffectEditMessage, after: s.editPurchaseMessage}
	notifyAdmin := purchaseEffect{kind: domain.EffectNotifyParty, after: s.notifyParty(domain.ChatRoleAdmin)}
	notifyCourier := purchaseEffect{kind: domain.EffectNotifyParty, after: s.notifyParty(domain.ChatRoleCourier)}

	t := map[purchaseTransitionKey][]purchaseEffect{
		{domain.PurchaseStatusDraft, domain.PurchaseStatusSent}:           {reserve, sendNew},
		{domain.PurchaseStatusSent, domain.PurchaseStatusAwaitingPayment}: {edit, notifyAdmin},
		{domain.PurchaseStatusAwaitingPayment, domain.PurchaseStatusPaid}: {edit, notifyAdmin},
		{domain.PurchaseStatusPaid, domain.PurchaseStatusShipped}:         {edit, notifyCourier},
		{domain.PurchaseStatusDraft, domain.PurchaseStatusCancelled}:      {},
	}

	for _, from := range domain.PurchaseStatuses {
		if !from.HoldsReservation() {
			continue
		}
		t[purchaseTransitionKey{from, domain.PurchaseStatusReceived}] = []purchaseEffect{release, commit, expense, edit}
		t[purchaseTransitionKey{from, domain.PurchaseStatusCancelled}] = []purchaseEffect{release, edit}
	}
	return t
}

func (s *PurchaseService) reserveTransit(ctx context.Context, tx uow.TX, tc *purchaseTransition) (bool, error) {
	for _, item := range tc.purchase.Items {
		if err := s.ledger.ReserveToTransit(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return false, err
		}
	}
	return len(tc.purchase.Items) > 0, nil
}

// releaseTransit снимает из транзита ровно то, что было зарезервировано при отправке: заказанное количество.
func (s *PurchaseService) releaseTransit(ctx context.Context, tx uow.TX, tc *purchaseTransition) (bool, error) {
	if !tc.from.HoldsReservation() {
		return false, nil
	}
	for _, item := range tc.purchase.Items {
		if err := s.ledger.ReleaseFromTransit(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return false, err
		}
	}
	return len(tc.purchase.Items) > 0, nil
}

// commitReceived приходует фактически принятое количество, сохраняет расхождения и дату приемки, ставит
// уведомления о поступлении подписчикам товаров, которых не было в наличии.
func (s *PurchaseService) commitReceived(ctx context.Context, tx uow.TX, tc *purchaseTransition) (bool, error) {
	args := tc.receive
	if args == nil {
		args = new(ReceiveArgs)
	}

	received, err := receivedQuantities(tc.purchase, args.Items)
	if err != nil {
		return false, err
	}

	receivedAt := args.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = tc.now
	}

	res := &ReceiveResult{
		PurchaseID:   tc.purchase.ID,
		NewStatus:    domain.PurchaseStatusReceived,
		DeliveryDays: deliveryDays(tc.purchase.CreatedAt, receivedAt),
		Items:        make([]ReceivedItem, 0, len(tc.purchase.Items)),
	}

	receipts := make([]repoargs.PurchaseItemReceipt, 0, len(tc.purchase.Items))
	restocked := make(map[int64]repoargs.StockChange)

	for _, item := range tc.purchase.Items {
		qty := received[item.ID]
		diff := qty - item.Quantity
		if diff > 0 {
			s.l.WithFields(logrus.Fields{
				"purchaseID": tc.purchase.ID,
				"itemID":     item.ID,
				"ordered":    item.Quantity,
				"received":   qty,
			}).Warn("received more than ordered")
		}

		change, commitErr := s.ledger.CommitToStock(ctx, tx, item.ProductID, qty)
		if commitErr != nil {
			return false, commitErr
		}
		if change.Before <= 0 && change.After > 0 {
			restocked[item.ProductID] = *change
		}

		receipts = append(receipts, repoargs.PurchaseItemReceipt{
			ItemID:           item.ID,
			ReceivedQuantity: qty,
			Difference:       diff,
		})
		res.Items = append(res.Items, ReceivedItem{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Ordered:     item.Quantity,
			Received:    qty,
			Difference:  diff,
		})
		res.TotalOrdered += item.Quantity
		res.TotalReceived += qty
	}

	repo, repoErr := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
	if repoErr != nil {
		return false, repoErr
	}

	var receiptErr error
	repo.SaveItemReceipts(ctx, receipts, func(_ int, err error) {
		if err != nil {
			receiptErr = err
		}
	})
	if receiptErr != nil {
		return false, receiptErr
	}

	if markErr := repo.MarkReceived(ctx, repoargs.MarkPurchaseReceived{
		ID:           tc.purchase.ID,
		ReceivedAt:   receivedAt,
		DeliveryDays: res.DeliveryDays,
		Notes:        args.Notes,
	}); markErr != nil {
		return false, markErr //nolint:wrapcheck
	}

	for _, change := range restocked {
		scheduled, notifyErr := s.scheduleRestockNotices(ctx, tx, change)
		if notifyErr != nil {
			return false, notifyErr
		}
		if scheduled > 0 {
			res.Restocked = append(res.Restocked, change.ProductID)
		}
	}

	res.Summary = res.buildSummary()
	tc.receipt = res
	return true, nil
}

func (s *PurchaseService) scheduleRestockNotices(
	ctx context.Context,
	tx uow.TX,
	change repoargs.StockChange,
) (int, error) {
	subRepo, err := txRepo[SubscriptionRepository](tx, repoargs.SubscriptionRepoName)
	if err != nil {
		return 0, err
	}
	userIDs, subErr := subRepo.SubscriberIDs(ctx, change.ProductID)
	if subErr != nil {
		return 0, subErr //nolint:wrapcheck
	}

	for _, userID := range userIDs {
		if _, scheduleErr := s.notifications.ScheduleTx(ctx, tx, ScheduleArgs{
			TargetID: change.ProductID,
			UserID:   userID,
			DueAt:    s.now(),
			Payload: domain.RestockNoticePayload{
				ProductID:   change.ProductID,
				ProductName: change.ProductName,
			},
		}); scheduleErr != nil {
			return 0, scheduleErr
		}
	}
	return len(userIDs), nil
}

func (s *PurchaseService) recordExpense(ctx context.Context, tx uow.TX, tc *purchaseTransition) (bool, error) {
	if tc.receive == nil || !tc.receive.LogisticsExpense.IsPositive() {
		return false, nil
	}
	repo, err := txRepo[ExpenseRepository](tx, repoargs.ExpenseRepoName)
	if err != nil {
		return false, err
	}
	purchaseID := tc.purchase.ID
	if _, createErr := repo.Create(ctx, repoargs.CreateExpense{
		PurchaseID:  &purchaseID,
		Category:    logisticsExpenseCategory,
		Amount:      tc.receive.LogisticsExpense,
		Description: fmt.Sprintf("Логистика закупки #%d", purchaseID),
	}); createErr != nil {
		return false, createErr //nolint:wrapcheck
	}
	return true, nil
}

// sendNewPurchaseMessage отправляет карточку закупки поставщику и отдельной короткой записью сохраняет ссылку на
// сообщение для последующих правок.
func (s *PurchaseService) sendNewPurchaseMessage(ctx context.Context, tc *purchaseTransition) (bool, error) {
	chatID, err := s.chats.ChatID(ctx, domain.ChatRoleSupplier)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	handle, sendErr := s.messenger.Send(ctx, chatID, purchaseText(tc.purchase, tc.to))
	if sendErr != nil {
		return false, sendErr //nolint:wrapcheck
	}
	if saveErr := s.purchaseRepo.SetMessageHandle(ctx, tc.purchase.ID, *handle); saveErr != nil {
		return true, fmt.Errorf("message sent but handle not saved: %w", saveErr)
	}
	tc.purchase.MessageHandle = handle
	return true, nil
}

func (s *PurchaseService) editPurchaseMessage(ctx context.Context, tc *purchaseTransition) (bool, error) {
	if tc.purchase.MessageHandle == nil {
		return false, nil
	}
	if err := s.messenger.Edit(ctx, *tc.purchase.MessageHandle, purchaseText(tc.purchase, tc.to)); err != nil {
		return false, err //nolint:wrapcheck
	}
	return true, nil
}

func (s *PurchaseService) notifyParty(
	role domain.ChatRole,
) func(ctx context.Context, tc *purchaseTransition) (bool, error) {
	return func(ctx context.Context, tc *purchaseTransition) (bool, error) {
		chatID, err := s.chats.ChatID(ctx, role)
		if err != nil {
			return false, err //nolint:wrapcheck
		}
		if _, sendErr := s.messenger.Send(ctx, chatID, purchaseStatusNotice(tc.purchase, tc.to)); sendErr != nil {
			return false, sendErr //nolint:wrapcheck
		}
		return true, nil
	}
}

// receivedQuantities принятое количество по id позиции. Позиции без явного значения считаются принятыми полностью.
func receivedQuantities(p *domain.Purchase, items []ReceiveItemArgs) (map[int64]int64, error) {
	res := make(map[int64]int64, len(p.Items))
	for _, item := range p.Items {
		res[item.ID] = item.Quantity
	}
	for _, item := range items {
		if _, ok := res[item.ItemID]; !ok {
			return nil, fmt.Errorf("item %d of purchase %d: %w", item.ItemID, p.ID, domain.ErrUnknownItem)
		}
		if item.ReceivedQuantity < 0 {
			return nil, fmt.Errorf("item %d: %w", item.ItemID, domain.ErrInvalidQuantity)
		}
		res[item.ItemID] = item.ReceivedQuantity
	}
	return res, nil
}
