package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
)

func (s *RouterTestSuite) TestCreateOrder() {
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.CreateOrderArgs) (*domain.Order, error) {
			s.EqualValues(5, args.UserID)
			s.Require().Len(args.Items, 1)
			s.True(decimal.NewFromInt(3000).Equal(args.Items[0].Price))
			if args.BonusApplied > 300 {
				return nil, fmt.Errorf("deduct bonus: %w", domain.ErrInsufficientBalance)
			}
			return &domain.Order{
				ID:           10,
				UserID:       args.UserID,
				Status:       domain.OrderStatusUnpaid,
				Total:        decimal.NewFromInt(6300),
				DeliveryFee:  args.DeliveryFee,
				BonusApplied: args.BonusApplied,
				CreatedAt:    createdAt,
			}, nil
		}).Times(2)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name: "all ok",
			body: `{"user_id":5,"items":[{"product_id":1,"quantity":2,"price":"3000"}],` +
				`"delivery_fee":"500","bonus_applied":200}`,
			wantStatus: http.StatusCreated,
			wantBody: `{"id":10,"user_id":5,"status":"unpaid","total":"6300.00","delivery_fee":"500.00",` +
				`"bonus_applied":200,"created_at":"2025-03-10T12:00:00Z"}`,
		}, {
			name:       "insufficient balance",
			body:       `{"user_id":5,"items":[{"product_id":1,"quantity":2,"price":"3000"}],"bonus_applied":1000}`,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "no items",
			body:       `{"user_id":5,"items":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "zero quantity",
			body:       `{"user_id":5,"items":[{"product_id":1,"quantity":0,"price":"3000"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "negative price",
			body:       `{"user_id":5,"items":[{"product_id":1,"quantity":1,"price":"-1"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "negative bonus",
			body:       `{"user_id":5,"items":[{"product_id":1,"quantity":1,"price":"3000"}],"bonus_applied":-1}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.request(http.MethodPost, RouteGroup+OrdersRoute, t.body)
			s.Equal(t.wantStatus, status)
			if t.wantBody != "" {
				s.JSONEq(t.wantBody, string(body))
			}
		})
	}
}

func (s *RouterTestSuite) TestOrderTransition() {
	s.mockOrderService.EXPECT().
		Transition(gomock.Any(), int64(10), domain.OrderStatusPaid).
		Return(&service.OrderTransitionResult{
			NewStatus:          domain.OrderStatusPaid,
			NotificationSent:   false,
			SideEffectsApplied: []domain.EffectKind{domain.EffectCancelJob, domain.EffectSetTimestamp},
		}, nil)
	s.mockOrderService.EXPECT().
		Transition(gomock.Any(), int64(11), domain.OrderStatusPaid).
		Return(nil, domain.NewTransitionError("order", "cancelled", "paid"))

	url := func(id int64) string {
		return RouteGroup + replaceParam(OrderTransitionRoute, ":id", fmt.Sprint(id))
	}

	status, body := s.request(http.MethodPost, url(10), OrderTransitionParams{Status: "paid"})
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"status":"paid","side_effects":["cancel_job","set_timestamp"],"notification_sent":false}`,
		string(body))

	status, _ = s.request(http.MethodPost, url(11), OrderTransitionParams{Status: "paid"})
	s.Equal(http.StatusConflict, status)

	status, _ = s.request(http.MethodPost, url(10), OrderTransitionParams{Status: "refunded"})
	s.Equal(http.StatusUnprocessableEntity, status)
}
