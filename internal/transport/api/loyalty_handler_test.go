package api

import (
	"fmt"
	"net/http"

	"github.com/golang/mock/gomock"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
)

func (s *RouterTestSuite) TestAdjustBonus() {
	s.mockLoyaltyService.EXPECT().
		AddBonus(gomock.Any(), service.BonusArgs{
			UserID:     5,
			Amount:     200,
			Reason:     "compensation",
			SourceType: domain.BonusSourceManual,
			SourceID:   9,
		}).
		Return(&service.BonusResult{Balance: 500}, nil)
	s.mockLoyaltyService.EXPECT().
		DeductBonus(gomock.Any(), service.BonusArgs{
			UserID:     5,
			Amount:     1000,
			Reason:     "correction",
			SourceType: domain.BonusSourceManual,
			SourceID:   10,
		}).
		Return(nil, fmt.Errorf("apply bonus entry: %w", domain.ErrInsufficientBalance))
	s.mockLoyaltyService.EXPECT().
		DeductBonus(gomock.Any(), gomock.Any()).
		Return(&service.BonusResult{Balance: 400, AlreadyApplied: true}, nil)

	url := func(id string) string {
		return RouteGroup + replaceParam(UserBonusRoute, ":id", id)
	}

	cases := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "add",
			id:         "5",
			body:       `{"amount":200,"reason":"compensation","source_id":9}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"user_id":5,"amount":200,"balance":500,"already_applied":false}`,
		}, {
			name:       "deduct insufficient balance",
			id:         "5",
			body:       `{"amount":-1000,"reason":"correction","source_id":10}`,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "deduct repeated",
			id:         "5",
			body:       `{"amount":-100,"reason":"correction","source_id":11}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"user_id":5,"amount":-100,"balance":400,"already_applied":true}`,
		}, {
			name:       "zero amount",
			id:         "5",
			body:       `{"amount":0,"reason":"correction","source_id":12}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "no reason",
			id:         "5",
			body:       `{"amount":10,"source_id":12}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "invalid id",
			id:         "abc",
			body:       `{"amount":10,"reason":"correction","source_id":12}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.request(http.MethodPost, url(t.id), t.body)
			s.Equal(t.wantStatus, status)
			if t.wantBody != "" {
				s.JSONEq(t.wantBody, string(body))
			}
		})
	}
}

func (s *RouterTestSuite) TestCheckTier() {
	s.mockLoyaltyService.EXPECT().
		CheckAndUpgradeTier(gomock.Any(), int64(5), int64(6)).
		Return(&service.TierChange{
			From:    domain.Tier{ID: 1, Title: "Base", BonusPercent: 3},
			To:      domain.Tier{ID: 2, Title: "Silver", BonusPercent: 5, OrderThreshold: 5},
			Changed: true,
		}, nil)
	s.mockLoyaltyService.EXPECT().
		CheckAndUpgradeTier(gomock.Any(), int64(404), int64(0)).
		Return(nil, fmt.Errorf("check tier: %w", domain.ErrRecordNotFound))

	url := func(id int64) string {
		return RouteGroup + replaceParam(UserTierRoute, ":id", fmt.Sprint(id))
	}

	status, body := s.request(http.MethodPost, url(5), `{"order_count":6}`)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"user_id":5,"tier_id":2,"tier_title":"Silver","bonus_percent":5,"changed":true}`, string(body))

	status, _ = s.request(http.MethodPost, url(404), `{"order_count":0}`)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.request(http.MethodPost, url(5), `{}`)
	s.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.request(http.MethodPost, url(5), `{"order_count":-1}`)
	s.Equal(http.StatusUnprocessableEntity, status)
}
