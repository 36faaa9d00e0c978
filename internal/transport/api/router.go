package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	// JobsRunTimeout пачка задач доставляется дольше обычного запроса.
	JobsRunTimeout = 2 * time.Minute
)

const (
	RouteGroup              = "/api"
	PurchaseTransitionRoute = "/purchases/:id/transition"
	PurchaseReceiveRoute    = "/purchases/:id/receive"
	PurchaseRoute           = "/purchases/:id"
	OrdersRoute             = "/orders"
	OrderTransitionRoute    = "/orders/:id/transition"
	NotificationsRoute      = "/notifications"
	NotificationCancelRoute = "/notifications/:type/:target"
	UserBonusRoute          = "/users/:id/bonus"
	UserTierRoute           = "/users/:id/tier"
	JobsRunRoute            = "/jobs/run"
	MetricsRoute            = "/metrics"
)

type RouterArgs struct {
	Logger              *logrus.Logger
	PurchaseService     PurchaseServicer
	OrderService        OrderServicer
	NotificationService NotificationServicer
	LoyaltyService      LoyaltyServicer
	Jobs                JobProcessor
	MetricsHandler      http.Handler
	JWTSecretKey        []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	if args.MetricsHandler != nil {
		r.GET(MetricsRoute, gin.WrapH(args.MetricsHandler))
	}

	purchasesHandler := NewPurchasesHandler(args.PurchaseService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	notificationsHandler := NewNotificationsHandler(args.NotificationService)
	loyaltyHandler := NewLoyaltyHandler(args.LoyaltyService)
	jobsHandler := NewJobsHandler(args.Jobs)

	api := r.Group(RouteGroup)
	// все роуты группы требуют токен администратора.
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	api.POST(PurchaseTransitionRoute, purchasesHandler.Transition)
	api.POST(PurchaseReceiveRoute, purchasesHandler.Receive)
	api.DELETE(PurchaseRoute, purchasesHandler.Delete)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.POST(OrderTransitionRoute, ordersHandler.Transition)

	api.POST(NotificationsRoute, notificationsHandler.Schedule)
	api.DELETE(NotificationCancelRoute, notificationsHandler.Cancel)

	api.POST(UserBonusRoute, loyaltyHandler.AdjustBonus)
	api.POST(UserTierRoute, loyaltyHandler.CheckTier)

	api.POST(JobsRunRoute, jobsHandler.Run)
	return r, nil
}
