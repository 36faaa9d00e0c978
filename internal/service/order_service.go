package service

import (
	"context"
	"fmt"
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

const (
	defaultPaymentReminderDelay = 30 * time.Minute

	bonusReasonOrderPayment = "order_payment"
)

// OrderService машина состояний заказов покупателей.
type OrderService struct {
	uow           uow.UOW
	orderRepo     OrderRepository
	userRepo      UserRepository
	loyalty       *LoyaltyService
	notifications *NotificationService
	messenger     Messenger
	chats         ChatResolver
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	l             *logrus.Entry
	now           func() time.Time

	reminderDelay  time.Duration
	messageTimeout time.Duration
	transitions    map[orderTransitionKey][]orderEffect
}

type OrderServiceArgs struct {
	UOW           uow.UOW
	Loyalty       *LoyaltyService
	Notifications *NotificationService
	Messenger     Messenger
	Chats         ChatResolver
	Metrics       *metrics.Metrics
	Logger        *logrus.Logger
	// ReminderDelay через сколько после создания заказа напомнить об оплате.
	ReminderDelay time.Duration
}

func NewOrderService(args OrderServiceArgs) (*OrderService, error) {
	orderRepo, err := connRepo[OrderRepository](args.UOW, repoargs.OrderRepoName)
	if err != nil {
		return nil, err
	}
	userRepo, err := connRepo[UserRepository](args.UOW, repoargs.UserRepoName)
	if err != nil {
		return nil, err
	}

	reminderDelay := args.ReminderDelay
	if reminderDelay <= 0 {
		reminderDelay = defaultPaymentReminderDelay
	}

	s := &OrderService{
		uow:           args.UOW,
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		loyalty:       args.Loyalty,
		notifications: args.Notifications,
		messenger:     args.Messenger,
		chats:         args.Chats,
		metrics:       args.Metrics,
		tracer:        tracing.Tracer(),
		l: args.Logger.WithFields(logrus.Fields{
			"component": "service",
			"module":    "orders",
		}),
		now:            time.Now,
		reminderDelay:  reminderDelay,
		messageTimeout: defaultMessageTimeout,
	}
	s.transitions = s.transitionTable()
	return s, nil
}

type CreateOrderItemArgs struct {
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

type CreateOrderArgs struct {
	UserID      int64
	Items       []CreateOrderItemArgs
	DeliveryFee decimal.Decimal
	// BonusApplied бонусы, которыми покупатель оплачивает часть заказа. Списываются с баланса при создании.
	BonusApplied int64
}

// Create создает неоплаченный заказ и в той же транзакции ставит напоминание об оплате.
func (s *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	if len(args.Items) == 0 {
		return nil, fmt.Errorf("create order: no items: %w", domain.ErrInvalidQuantity)
	}

	total := args.DeliveryFee
	items := make([]repoargs.CreateOrderItem, len(args.Items))
	for i, item := range args.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("create order: product %d: %w", item.ProductID, domain.ErrInvalidQuantity)
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
		items[i] = repoargs.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	if args.BonusApplied < 0 || decimal.NewFromInt(args.BonusApplied).GreaterThan(total.Sub(args.DeliveryFee)) {
		return nil, fmt.Errorf("create order: bonus %d: %w", args.BonusApplied, domain.ErrInvalidQuantity)
	}
	total = total.Sub(decimal.NewFromInt(args.BonusApplied))

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, err := txRepo[OrderRepository](tx, repoargs.OrderRepoName)
		if err != nil {
			return err
		}
		created, createErr := repo.Create(c, repoargs.CreateOrder{
			UserID:       args.UserID,
			Total:        total,
			DeliveryFee:  args.DeliveryFee,
			BonusApplied: args.BonusApplied,
			Items:        items,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		if args.BonusApplied > 0 {
			if _, deductErr := s.loyalty.deductBonusTx(c, tx, BonusArgs{
				UserID:     args.UserID,
				Amount:     args.BonusApplied,
				Reason:     bonusReasonOrderPayment,
				SourceType: domain.BonusSourceOrder,
				SourceID:   created.ID,
			}); deductErr != nil {
				return deductErr
			}
		}

		if _, scheduleErr := s.notifications.ScheduleTx(c, tx, ScheduleArgs{
			TargetID: created.ID,
			UserID:   args.UserID,
			DueAt:    s.now().Add(s.reminderDelay),
			Payload:  domain.PaymentReminderPayload{OrderID: created.ID, Total: created.Total},
		}); scheduleErr != nil {
			return scheduleErr
		}

		order = created
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("create order for user %d: %w", args.UserID, txErr)
	}
	return order, nil
}

type OrderTransitionResult struct {
	NewStatus          domain.OrderStatus
	NotificationSent   bool
	SideEffectsApplied []domain.EffectKind
}

// Transition переводит заказ в статус to. Начисление бонусов выполняется в savepoint: его ошибка логируется и
// откатывается, но смена статуса фиксируется.
func (s *OrderService) Transition(
	ctx context.Context,
	id int64,
	to domain.OrderStatus,
) (*OrderTransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.to", string(to)),
	))
	defer span.End()

	if !to.IsValid() {
		err := domain.NewTransitionError("order", "", string(to))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tc := &orderTransition{to: to, now: s.now()}
	var effects []orderEffect

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, err := txRepo[OrderRepository](tx, repoargs.OrderRepoName)
		if err != nil {
			return err
		}
		order, findErr := repo.FindByIDForUpdate(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		var ok bool
		effects, ok = s.transitions[orderTransitionKey{from: order.Status, to: to}]
		if !ok {
			return domain.NewTransitionError("order", string(order.Status), string(to))
		}
		tc.order = order
		tc.from = order.Status
		tc.update = repoargs.UpdateOrderStatus{ID: id, Status: to}

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

		updated, updErr := repo.UpdateStatus(c, tc.update)
		if updErr != nil {
			return updErr //nolint:wrapcheck
		}
		updated.Items = order.Items
		tc.order = updated
		return nil
	})
	if txErr != nil {
		span.RecordError(txErr)
		span.SetStatus(codes.Error, txErr.Error())
		return nil, fmt.Errorf("order %d transition to %s: %w", id, to, txErr)
	}

	s.metrics.TransitionApplied("order", string(to))
	s.l.WithFields(logrus.Fields{
		"orderID": id,
		"from":    tc.from,
		"to":      to,
		"effects": tc.applied,
	}).Info("order transition committed")

	res := &OrderTransitionResult{NewStatus: to}

	msgCtx, cancel := messageContext(ctx, s.messageTimeout)
	defer cancel()
	for _, e := range effects {
		if e.after == nil {
			continue
		}
		applied, afterErr := e.after(msgCtx, tc)
		if afterErr != nil {
			s.l.WithError(afterErr).WithFields(logrus.Fields{
				"orderID": id,
				"effect":  e.kind,
			}).Warn("order message effect failed")
			continue
		}
		if applied {
			tc.applied = append(tc.applied, e.kind)
			res.NotificationSent = true
		}
	}

	res.SideEffectsApplied = tc.applied
	return res, nil
}

// OrderStatus текущий статус заказа.
func (s *OrderService) OrderStatus(ctx context.Context, orderID int64) (domain.OrderStatus, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return order.Status, nil
}

// RecipientChatID чат пользователя в мессенджере.
func (s *OrderService) RecipientChatID(ctx context.Context, userID int64) (int64, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return user.TelegramID, nil
}
