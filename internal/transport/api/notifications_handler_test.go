package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
	"github.com/osama-agency/telesklad/internal/transport/jobrunner"
)

func (s *RouterTestSuite) TestScheduleNotification() {
	dueAt := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	s.mockNotificationService.EXPECT().
		Schedule(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.ScheduleArgs) (*domain.NotificationJob, error) {
			s.Equal(domain.JobTypePaymentReminder, args.Type)
			s.True(dueAt.Equal(args.DueAt))
			reminder, ok := args.Payload.(*domain.PaymentReminderPayload)
			s.Require().True(ok)
			s.EqualValues(42, reminder.OrderID)
			return &domain.NotificationJob{
				ID:          7,
				Type:        args.Type,
				TargetID:    args.TargetID,
				Status:      domain.JobStatusPending,
				ScheduledAt: args.DueAt,
			}, nil
		})

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name: "all ok",
			body: `{"type":"payment_reminder","target_id":42,"user_id":5,"due_at":"2025-03-10T12:30:00Z",` +
				`"payload":{"order_id":42,"total":"1500"}}`,
			wantStatus: http.StatusCreated,
			wantBody: `{"id":7,"type":"payment_reminder","target_id":42,"status":"pending",` +
				`"scheduled_at":"2025-03-10T12:30:00Z"}`,
		}, {
			name:       "unknown type",
			body:       `{"type":"sms","target_id":42,"payload":{}}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "payload mismatch",
			body:       `{"type":"bonus_notice","target_id":42,"payload":{"amount":"many"}}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "no payload",
			body:       `{"type":"bonus_notice","target_id":42}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.request(http.MethodPost, RouteGroup+NotificationsRoute, t.body)
			s.Equal(t.wantStatus, status)
			if t.wantBody != "" {
				s.JSONEq(t.wantBody, string(body))
			}
		})
	}
}

func (s *RouterTestSuite) TestCancelNotification() {
	s.mockNotificationService.EXPECT().
		Cancel(gomock.Any(), domain.JobTypePaymentReminder, int64(42)).
		Return(int64(1), nil)
	s.mockNotificationService.EXPECT().
		Cancel(gomock.Any(), domain.JobTypePaymentReminder, int64(43)).
		Return(int64(0), nil)

	url := func(jobType string, target any) string {
		route := replaceParam(NotificationCancelRoute, ":type", jobType)
		return RouteGroup + replaceParam(route, ":target", fmt.Sprint(target))
	}

	status, body := s.request(http.MethodDelete, url("payment_reminder", 42), nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"cancelled":1}`, string(body))

	status, body = s.request(http.MethodDelete, url("payment_reminder", 43), nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"cancelled":0}`, string(body))

	status, _ = s.request(http.MethodDelete, url("sms", 42), nil)
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.request(http.MethodDelete, url("payment_reminder", 0), nil)
	s.Equal(http.StatusBadRequest, status)
}

func (s *RouterTestSuite) TestRunJobs() {
	gomock.InOrder(
		s.mockJobs.EXPECT().ProcessDueJobs(gomock.Any()).
			Return(&jobrunner.Result{Processed: 3, Succeeded: 1, Failed: 2, Retried: 1}, nil),
		s.mockJobs.EXPECT().ProcessDueJobs(gomock.Any()).
			Return(nil, errors.New("claim: connection refused")),
	)

	status, body := s.request(http.MethodPost, RouteGroup+JobsRunRoute, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"processed":3,"succeeded":1,"failed":2,"retried":1}`, string(body))

	status, _ = s.request(http.MethodPost, RouteGroup+JobsRunRoute, nil)
	s.Equal(http.StatusInternalServerError, status)
}
