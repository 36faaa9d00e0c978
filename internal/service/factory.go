package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/metrics"
	"github.com/osama-agency/telesklad/pkg/uow"
)

type AppServices struct {
	PurchaseService     *PurchaseService
	OrderService        *OrderService
	LoyaltyService      *LoyaltyService
	NotificationService *NotificationService
	InventoryLedger     *InventoryLedger
}

type FactoryArgs struct {
	UOW                  uow.UOW
	Messenger            Messenger
	Chats                ChatResolver
	Loyalty              domain.LoyaltyProgram
	Metrics              *metrics.Metrics
	Logger               *logrus.Logger
	PaymentReminderDelay time.Duration
}

func Factory(args FactoryArgs) (*AppServices, error) {
	notificationService, notificationErr := NewNotificationService(args.UOW, args.Logger)
	if notificationErr != nil {
		return nil, fmt.Errorf("service factory: %s", notificationErr.Error())
	}

	ledger := NewInventoryLedger(args.Logger)
	loyaltyService := NewLoyaltyService(args.UOW, args.Loyalty, args.Logger)

	purchaseService, purchaseErr := NewPurchaseService(PurchaseServiceArgs{
		UOW:           args.UOW,
		Ledger:        ledger,
		Notifications: notificationService,
		Messenger:     args.Messenger,
		Chats:         args.Chats,
		Metrics:       args.Metrics,
		Logger:        args.Logger,
	})
	if purchaseErr != nil {
		return nil, fmt.Errorf("service factory: %s", purchaseErr.Error())
	}

	orderService, orderErr := NewOrderService(OrderServiceArgs{
		UOW:           args.UOW,
		Loyalty:       loyaltyService,
		Notifications: notificationService,
		Messenger:     args.Messenger,
		Chats:         args.Chats,
		Metrics:       args.Metrics,
		Logger:        args.Logger,
		ReminderDelay: args.PaymentReminderDelay,
	})
	if orderErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderErr.Error())
	}

	return &AppServices{
		PurchaseService:     purchaseService,
		OrderService:        orderService,
		LoyaltyService:      loyaltyService,
		NotificationService: notificationService,
		InventoryLedger:     ledger,
	}, nil
}
