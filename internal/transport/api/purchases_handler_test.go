package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
	"github.com/osama-agency/telesklad/internal/transport/api/testutils"
)

func purchaseURL(route string, id any) string {
	return RouteGroup + replaceParam(route, ":id", fmt.Sprint(id))
}

func (s *RouterTestSuite) TestPurchaseTransition() {
	s.mockPurchaseService.EXPECT().
		Transition(gomock.Any(), int64(1), domain.PurchaseStatusSent).
		Return(&service.PurchaseTransitionResult{
			NewStatus:          domain.PurchaseStatusSent,
			SideEffectsApplied: []domain.EffectKind{domain.EffectReserveTransit, domain.EffectSendMessage},
		}, nil)
	s.mockPurchaseService.EXPECT().
		Transition(gomock.Any(), int64(2), domain.PurchaseStatusShipped).
		Return(nil, domain.NewTransitionError("purchase", "draft", "shipped"))
	s.mockPurchaseService.EXPECT().
		Transition(gomock.Any(), int64(3), domain.PurchaseStatusSent).
		Return(nil, fmt.Errorf("find purchase: %w", domain.ErrRecordNotFound))

	cases := []struct {
		name       string
		id         any
		body       any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all ok",
			id:         1,
			body:       PurchaseTransitionParams{Status: "sent"},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"sent","side_effects":["reserve_transit","send_message"]}`,
		}, {
			name:       "invalid transition",
			id:         2,
			body:       PurchaseTransitionParams{Status: "shipped"},
			wantStatus: http.StatusConflict,
		}, {
			name:       "not found",
			id:         3,
			body:       PurchaseTransitionParams{Status: "sent"},
			wantStatus: http.StatusNotFound,
		}, {
			name:       "unknown status",
			id:         1,
			body:       PurchaseTransitionParams{Status: "lost"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "invalid id",
			id:         "abc",
			body:       PurchaseTransitionParams{Status: "sent"},
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "broken json",
			id:         1,
			body:       `{"status":`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.request(http.MethodPost, purchaseURL(PurchaseTransitionRoute, t.id), t.body)
			s.Equal(t.wantStatus, status)
			if t.wantBody != "" {
				s.JSONEq(t.wantBody, string(body))
			}
		})
	}
}

func (s *RouterTestSuite) TestPurchaseReceive() {
	s.mockPurchaseService.EXPECT().
		Receive(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, args service.ReceiveArgs) (*service.ReceiveResult, error) {
			s.Equal([]service.ReceiveItemArgs{{ItemID: 10, ReceivedQuantity: 0}}, args.Items)
			s.True(decimal.NewFromInt(700).Equal(args.LogisticsExpense))
			s.True(args.ReceivedAt.IsZero())
			return &service.ReceiveResult{
				PurchaseID:   1,
				NewStatus:    domain.PurchaseStatusReceived,
				DeliveryDays: 3,
				Items: []service.ReceivedItem{
					{ItemID: 10, ProductID: 100, ProductName: "Крем", Ordered: 5, Received: 0, Difference: -5},
				},
				TotalOrdered:       5,
				TotalReceived:      0,
				Summary:            "Крем -5",
				SideEffectsApplied: []domain.EffectKind{domain.EffectCommitStock},
			}, nil
		})
	s.mockPurchaseService.EXPECT().
		Receive(gomock.Any(), int64(2), gomock.Any()).
		Return(nil, fmt.Errorf("item 99: %w", domain.ErrUnknownItem))

	status, body := s.request(http.MethodPost, purchaseURL(PurchaseReceiveRoute, 1),
		`{"items":[{"item_id":10,"received_quantity":0}],"logistics_expense":"700"}`)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{
		"purchase_id":1,"status":"received","delivery_days":3,"total_ordered":5,"total_received":0,
		"items":[{"item_id":10,"product_id":100,"product_name":"Крем","ordered":5,"received":0,"difference":-5}],
		"restocked":null,"summary":"Крем -5","side_effects":["commit_stock"]
	}`, string(body))

	status, _ = s.request(http.MethodPost, purchaseURL(PurchaseReceiveRoute, 2), `{}`)
	s.Equal(http.StatusUnprocessableEntity, status)

	// валидация не пропускает запрос к сервису.
	status, _ = s.request(http.MethodPost, purchaseURL(PurchaseReceiveRoute, 3),
		`{"items":[{"item_id":10,"received_quantity":-1}]}`)
	s.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.request(http.MethodPost, purchaseURL(PurchaseReceiveRoute, 3),
		`{"items":[{"item_id":10}]}`)
	s.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.request(http.MethodPost, purchaseURL(PurchaseReceiveRoute, 3),
		ReceiveParams{Notes: testutils.GenerateOverBytesUnderRunes(501)})
	s.Equal(http.StatusUnprocessableEntity, status)
}

func (s *RouterTestSuite) TestPurchaseDelete() {
	s.mockPurchaseService.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
	s.mockPurchaseService.EXPECT().Delete(gomock.Any(), int64(2)).
		Return(fmt.Errorf("status sent: %w", domain.ErrNotDeletable))
	s.mockPurchaseService.EXPECT().Delete(gomock.Any(), int64(3)).
		Return(fmt.Errorf("delete purchase: %w", domain.ErrUnknown))

	status, _ := s.request(http.MethodDelete, purchaseURL(PurchaseRoute, 1), nil)
	s.Equal(http.StatusNoContent, status)

	status, body := s.request(http.MethodDelete, purchaseURL(PurchaseRoute, 2), nil)
	s.Equal(http.StatusConflict, status)
	s.Contains(string(body), domain.ErrNotDeletable.Error())

	status, body = s.request(http.MethodDelete, purchaseURL(PurchaseRoute, 3), nil)
	s.Equal(http.StatusInternalServerError, status)
	s.JSONEq(`{"error":"internal server error"}`, string(body), "internal errors are not exposed")
}
