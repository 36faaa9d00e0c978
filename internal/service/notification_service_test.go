package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/internal/service/mocks"
	"github.com/osama-agency/telesklad/pkg/uow"
	uowmocks "github.com/osama-agency/telesklad/pkg/uow/mocks"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockUOW     *uowmocks.MockUOW
	mockTX      *uowmocks.MockTX
	mockJobRepo *mocks.MockJobRepository
	service     *NotificationService
	now         time.Time
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (s *NotificationServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockJobRepo = mocks.NewMockJobRepository(s.mockCtrl)

	// Репозиторий задач запрашивается при создании сервиса и внутри транзакций.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.JobRepoName)).
		Return(s.mockJobRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.JobRepoName)).
		Return(s.mockJobRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	service, err := NewNotificationService(s.mockUOW, logrus.New())
	s.Require().NoError(err)
	s.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return s.now }
	s.service = service
}

func (s *NotificationServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *NotificationServiceTestSuite) TestScheduleReminderSupersedesPending() {
	dueAt := s.now.Add(30 * time.Minute)

	gomock.InOrder(
		s.mockJobRepo.EXPECT().LockTarget(gomock.Any(), domain.JobTypePaymentReminder, int64(42)).Return(nil),
		s.mockJobRepo.EXPECT().CancelPending(gomock.Any(), domain.JobTypePaymentReminder, int64(42)).
			Return(int64(1), nil),
		s.mockJobRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args repoargs.CreateJob) (*domain.NotificationJob, error) {
				s.Equal(domain.JobTypePaymentReminder, args.Type)
				s.Equal(dueAt, args.ScheduledAt)
				s.JSONEq(`{"order_id":42,"total":"1500"}`, string(args.Payload))
				return &domain.NotificationJob{ID: 7, Type: args.Type, Status: domain.JobStatusPending}, nil
			}),
	)

	job, err := s.service.Schedule(context.Background(), ScheduleArgs{
		TargetID: 42,
		UserID:   5,
		DueAt:    dueAt,
		Payload:  domain.PaymentReminderPayload{OrderID: 42, Total: decimal.NewFromInt(1500)},
	})
	s.Require().NoError(err)
	s.EqualValues(7, job.ID)
}

func (s *NotificationServiceTestSuite) TestScheduleNoticeSkipsDedupe() {
	s.mockJobRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateJob) (*domain.NotificationJob, error) {
			s.Equal(s.now, args.ScheduledAt, "zero due time means now")
			return &domain.NotificationJob{ID: 8, Type: args.Type}, nil
		})

	_, err := s.service.Schedule(context.Background(), ScheduleArgs{
		TargetID: 1,
		UserID:   5,
		Payload:  domain.BonusNoticePayload{OrderID: 1, Amount: 150, Balance: 450},
	})
	s.Require().NoError(err)
}

func (s *NotificationServiceTestSuite) TestScheduleRejectsMismatchedPayload() {
	_, err := s.service.Schedule(context.Background(), ScheduleArgs{
		Type:     domain.JobTypeTierNotice,
		TargetID: 1,
		Payload:  domain.BonusNoticePayload{OrderID: 1},
	})
	s.ErrorIs(err, domain.ErrInvalidPayload)

	_, err = s.service.Schedule(context.Background(), ScheduleArgs{TargetID: 1})
	s.ErrorIs(err, domain.ErrInvalidPayload)
}

func (s *NotificationServiceTestSuite) TestCancelNothingPending() {
	s.mockJobRepo.EXPECT().CancelPending(gomock.Any(), domain.JobTypePaymentReminder, int64(404)).
		Return(int64(0), nil)

	cancelled, err := s.service.Cancel(context.Background(), domain.JobTypePaymentReminder, 404)
	s.Require().NoError(err)
	s.Zero(cancelled)
}

func (s *NotificationServiceTestSuite) TestClaimAndComplete() {
	s.mockJobRepo.EXPECT().ClaimDue(gomock.Any(), repoargs.ClaimJobs{Owner: "runner-1", Now: s.now, Limit: 10}).
		Return([]domain.NotificationJob{{ID: 1}, {ID: 2}}, nil)
	s.mockJobRepo.EXPECT().MarkDone(gomock.Any(), int64(1), "runner-1").Return(nil)
	s.mockJobRepo.EXPECT().MarkDone(gomock.Any(), int64(2), "runner-1").
		Return(domain.ErrClaimLost)

	jobs, err := s.service.ClaimDueJobs(context.Background(), "runner-1", 10)
	s.Require().NoError(err)
	s.Len(jobs, 2)

	s.NoError(s.service.CompleteJob(context.Background(), 1, "runner-1"))
	s.ErrorIs(s.service.CompleteJob(context.Background(), 2, "runner-1"), domain.ErrClaimLost)
}

func (s *NotificationServiceTestSuite) TestRetryAndFailKeepLastError() {
	cause := domain.NewDeliveryError(503, 0, errors.New("service unavailable"))
	at := s.now.Add(time.Minute)

	s.mockJobRepo.EXPECT().Reschedule(gomock.Any(), repoargs.RescheduleJob{
		ID:          3,
		Owner:       "runner-1",
		ScheduledAt: at,
		LastError:   cause.Error(),
	}).Return(nil)
	s.mockJobRepo.EXPECT().MarkFailed(gomock.Any(), int64(4), "runner-1", cause.Error()).Return(nil)

	s.NoError(s.service.RetryJob(context.Background(), 3, "runner-1", at, cause))
	s.NoError(s.service.FailJob(context.Background(), 4, "runner-1", cause))
}

func (s *NotificationServiceTestSuite) TestReleaseStaleJobs() {
	s.mockJobRepo.EXPECT().ReleaseStale(gomock.Any(), s.now.Add(-5*time.Minute)).Return(int64(2), nil)

	released, err := s.service.ReleaseStaleJobs(context.Background(), 5*time.Minute)
	s.Require().NoError(err)
	s.EqualValues(2, released)
}

// TestSingleReminderPerOrder повторное планирование напоминания оставляет ровно одну ожидающую задачу.
func TestSingleReminderPerOrder(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatal(err)
	}
	n := env.services.NotificationService

	for i := 0; i < 3; i++ {
		_, scheduleErr := n.Schedule(context.Background(), ScheduleArgs{
			TargetID: 9,
			UserID:   5,
			DueAt:    time.Now().Add(time.Duration(i) * time.Minute),
			Payload:  domain.PaymentReminderPayload{OrderID: 9},
		})
		if scheduleErr != nil {
			t.Fatal(scheduleErr)
		}
	}

	if pending := env.store.jobsBy(domain.JobTypePaymentReminder, domain.JobStatusPending); len(pending) != 1 {
		t.Fatalf("expected 1 pending reminder, got %d", len(pending))
	}
	if cancelled := env.store.jobsBy(domain.JobTypePaymentReminder, domain.JobStatusCancelled); len(cancelled) != 2 {
		t.Fatalf("expected 2 cancelled reminders, got %d", len(cancelled))
	}

	cancelledNow, err := n.Cancel(context.Background(), domain.JobTypePaymentReminder, 10)
	if err != nil || cancelledNow != 0 {
		t.Fatalf("cancel without pending jobs: %d, %v", cancelledNow, err)
	}
}

// TestPendingReminderIsUniquePerTarget вставка второго ожидающего напоминания в обход планировщика
// отклоняется хранилищем, уведомления того же типа это ограничение не затрагивает.
func TestPendingReminderIsUniquePerTarget(t *testing.T) {
	env, err := newTestEnv()
	if err != nil {
		t.Fatal(err)
	}
	repo := &memJobRepo{env.store}
	reminder := repoargs.CreateJob{Type: domain.JobTypePaymentReminder, TargetID: 11, UserID: 5}

	if _, err = repo.Create(context.Background(), reminder); err != nil {
		t.Fatal(err)
	}
	if _, err = repo.Create(context.Background(), reminder); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	notice := repoargs.CreateJob{Type: domain.JobTypeBonusNotice, TargetID: 11, UserID: 5}
	for range 2 {
		if _, err = repo.Create(context.Background(), notice); err != nil {
			t.Fatal(err)
		}
	}

	// планировщик сначала отменяет ожидающее напоминание, поэтому ограничение не мешает перепланированию.
	_, err = env.services.NotificationService.Schedule(context.Background(), ScheduleArgs{
		TargetID: 11,
		UserID:   5,
		Payload:  domain.PaymentReminderPayload{OrderID: 11},
	})
	if err != nil {
		t.Fatal(err)
	}
	if pending := env.store.jobsBy(domain.JobTypePaymentReminder, domain.JobStatusPending); len(pending) != 1 {
		t.Fatalf("expected 1 pending reminder, got %d", len(pending))
	}
}
