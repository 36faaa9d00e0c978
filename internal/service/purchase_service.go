package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/metrics"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/internal/tracing"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const logisticsExpenseCategory = "logistics"

// PurchaseService машина состояний закупок у поставщиков.
type PurchaseService struct {
	uow           uow.UOW
	purchaseRepo  PurchaseRepository
	ledger        *InventoryLedger
	notifications *NotificationService
	messenger     Messenger
	chats         ChatResolver
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	l             *logrus.Entry
	now           func() time.Time

	messageTimeout time.Duration
	transitions    map[purchaseTransitionKey][]purchaseEffect
}

type PurchaseServiceArgs struct {
	UOW           uow.UOW
	Ledger        *InventoryLedger
	Notifications *NotificationService
	Messenger     Messenger
	Chats         ChatResolver
	Metrics       *metrics.Metrics
	Logger        *logrus.Logger
}

func NewPurchaseService(args PurchaseServiceArgs) (*PurchaseService, error) {
	purchaseRepo, err := connRepo[PurchaseRepository](args.UOW, repoargs.PurchaseRepoName)
	if err != nil {
		return nil, err
	}
	s := &PurchaseService{
		uow:           args.UOW,
		purchaseRepo:  purchaseRepo,
		ledger:        args.Ledger,
		notifications: args.Notifications,
		messenger:     args.Messenger,
		chats:         args.Chats,
		metrics:       args.Metrics,
		tracer:        tracing.Tracer(),
		l: args.Logger.WithFields(logrus.Fields{
			"component": "service",
			"module":    "purchases",
		}),
		now:            time.Now,
		messageTimeout: defaultMessageTimeout,
	}
	s.transitions = s.transitionTable()
	return s, nil
}

type PurchaseTransitionResult struct {
	NewStatus          domain.PurchaseStatus
	SideEffectsApplied []domain.EffectKind
}

// Transition переводит закупку в статус to. Недопустимый переход отклоняется с domain.ErrInvalidTransition до
// каких-либо побочных эффектов. Переход в received равносилен Receive, где принято ровно заказанное количество.
func (s *PurchaseService) Transition(
	ctx context.Context,
	id int64,
	to domain.PurchaseStatus,
) (*PurchaseTransitionResult, error) {
	tc, err := s.run(ctx, id, to, nil)
	if err != nil {
		return nil, err
	}
	return &PurchaseTransitionResult{NewStatus: to, SideEffectsApplied: tc.applied}, nil
}

type ReceiveItemArgs struct {
	ItemID           int64
	ReceivedQuantity int64
}

type ReceiveArgs struct {
	// Items фактически принятое количество. Позиции, которых нет в списке, считаются принятыми полностью.
	Items      []ReceiveItemArgs
	ReceivedAt time.Time
	// LogisticsExpense расходы на доставку, записываются отдельной статьей расходов если больше нуля.
	LogisticsExpense decimal.Decimal
	Notes            string
}

type ReceivedItem struct {
	ItemID      int64
	ProductID   int64
	ProductName string
	Ordered     int64
	Received    int64
	Difference  int64
}

type ReceiveResult struct {
	PurchaseID         int64
	NewStatus          domain.PurchaseStatus
	DeliveryDays       int64
	Items              []ReceivedItem
	TotalOrdered       int64
	TotalReceived      int64
	Restocked          []int64
	Summary            string
	SideEffectsApplied []domain.EffectKind
}

// Receive оприходует закупку: остаток растет на принятое количество, транзит уменьшается ровно на
// зарезервированное (заказанное) количество, расхождение записывается по каждой позиции.
func (s *PurchaseService) Receive(ctx context.Context, id int64, args ReceiveArgs) (*ReceiveResult, error) {
	for _, item := range args.Items {
		if item.ReceivedQuantity < 0 {
			return nil, fmt.Errorf("receive item %d: %w", item.ItemID, domain.ErrInvalidQuantity)
		}
	}

	tc, err := s.run(ctx, id, domain.PurchaseStatusReceived, &args)
	if err != nil {
		return nil, err
	}
	tc.receipt.SideEffectsApplied = tc.applied
	return tc.receipt, nil
}

// Delete физически удаляет закупку. Допустимо только для черновиков и отмененных закупок.
func (s *PurchaseService) Delete(ctx context.Context, id int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, err := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
		if err != nil {
			return err
		}
		p, findErr := repo.FindByIDForUpdate(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if !p.Status.IsDeletable() {
			return fmt.Errorf("status %s: %w", p.Status, domain.ErrNotDeletable)
		}
		return repo.Delete(c, id) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("delete purchase %d: %w", id, txErr)
	}
	return nil
}

// run выполняет переход: под блокировкой строки закупки проверяет пару статусов по таблице переходов,
// применяет транзакционные эффекты, сохраняет статус и фиксирует транзакцию. Эффекты-сообщения выполняются после
// коммита, их ошибки только логируются.
func (s *PurchaseService) run(
	ctx context.Context,
	id int64,
	to domain.PurchaseStatus,
	receive *ReceiveArgs,
) (*purchaseTransition, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseService.Transition", trace.WithAttributes(
		attribute.Int64("purchase.id", id),
		attribute.String("purchase.to", string(to)),
	))
	defer span.End()

	if !to.IsValid() {
		err := domain.NewTransitionError("purchase", "", string(to))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tc := &purchaseTransition{to: to, receive: receive, now: s.now()}
	var effects []purchaseEffect

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, err := txRepo[PurchaseRepository](tx, repoargs.PurchaseRepoName)
		if err != nil {
			return err
		}
		p, findErr := repo.FindByIDForUpdate(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		var ok bool
		effects, ok = s.transitions[purchaseTransitionKey{from: p.Status, to: to}]
		if !ok {
			return domain.NewTransitionError("purchase", string(p.Status), string(to))
		}
		tc.purchase = p
		tc.from = p.Status

		for _, e := range effects {
			if e.apply == nil {
				continue
			}
			applied, applyErr := e.apply(c, tx, tc)
			if applyErr != nil {
				return fmt.Errorf("%s: %w", e.kind, applyErr)
			}
			if applied {
				tc.applied = append(tc.applied, e.kind)
			}
		}

		return repo.UpdateStatus(c, id, to) //nolint:wrapcheck
	})
	if txErr != nil {
		span.RecordError(txErr)
		span.SetStatus(codes.Error, txErr.Error())
		return nil, fmt.Errorf("purchase %d transition to %s: %w", id, to, txErr)
	}

	s.metrics.TransitionApplied("purchase", string(to))
	s.l.WithFields(logrus.Fields{
		"purchaseID": id,
		"from":       tc.from,
		"to":         to,
		"effects":    tc.applied,
	}).Info("purchase transition committed")

	msgCtx, cancel := messageContext(ctx, s.messageTimeout)
	defer cancel()
	for _, e := range effects {
		if e.after == nil {
			continue
		}
		applied, afterErr := e.after(msgCtx, tc)
		if afterErr != nil {
			s.l.WithError(afterErr).WithFields(logrus.Fields{
				"purchaseID": id,
				"effect":     e.kind,
			}).Warn("purchase message effect failed")
			continue
		}
		if applied {
			tc.applied = append(tc.applied, e.kind)
		}
	}
	return tc, nil
}

func (r *ReceiveResult) buildSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "purchase #%d received in %d day(s): %d of %d unit(s)",
		r.PurchaseID, r.DeliveryDays, r.TotalReceived, r.TotalOrdered)
	for _, item := range r.Items {
		if item.Difference != 0 {
			fmt.Fprintf(&b, "; %s %+d", item.ProductName, item.Difference)
		}
	}
	return b.String()
}
