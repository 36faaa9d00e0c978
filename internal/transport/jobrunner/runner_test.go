package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/transport/jobrunner/mocks"
)

type RunnerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockService   *mocks.MockServicer
	mockDeliverer *mocks.MockDeliverer
	runner        *Runner
	now           time.Time
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)
	s.mockDeliverer = mocks.NewMockDeliverer(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.runner = New(s.mockService, logger).
		SetMaxAttempts(5).
		SetBackoff(time.Minute).
		Register(domain.JobTypePaymentReminder, s.mockDeliverer).
		Register(domain.JobTypeBonusNotice, s.mockDeliverer)
	s.runner.now = func() time.Time { return s.now }

	s.mockService.EXPECT().ReleaseStaleJobs(gomock.Any(), s.runner.claimLease).Return(int64(0), nil).AnyTimes()
}

func (s *RunnerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RunnerTestSuite) expectClaim(jobs ...domain.NotificationJob) {
	s.mockService.EXPECT().
		ClaimDueJobs(gomock.Any(), s.runner.Owner(), s.runner.batchSize).
		Return(jobs, nil)
}

// TestProcess_NoJobs Пустая очередь не является ошибкой.
func (s *RunnerTestSuite) TestProcess_NoJobs() {
	s.expectClaim()

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{}, *res)
}

func (s *RunnerTestSuite) TestProcess_ClaimError() {
	s.mockService.EXPECT().
		ClaimDueJobs(gomock.Any(), s.runner.Owner(), s.runner.batchSize).
		Return(nil, errors.New("connection refused"))

	_, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Error(err)
}

func (s *RunnerTestSuite) TestProcess_Success() {
	jobs := []domain.NotificationJob{
		{ID: 1, Type: domain.JobTypePaymentReminder},
		{ID: 2, Type: domain.JobTypeBonusNotice},
	}
	s.expectClaim(jobs...)

	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), jobs[0]).Return(nil)
	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), jobs[1]).Return(nil)
	s.mockService.EXPECT().CompleteJob(gomock.Any(), int64(1), s.runner.Owner()).Return(nil)
	s.mockService.EXPECT().CompleteJob(gomock.Any(), int64(2), s.runner.Owner()).Return(nil)

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{Processed: 2, Succeeded: 2}, *res)
}

// TestProcess_RetryHonorsRetryAfter Задержка повтора не меньше, чем попросил мессенджер.
func (s *RunnerTestSuite) TestProcess_RetryHonorsRetryAfter() {
	job := domain.NotificationJob{ID: 3, Type: domain.JobTypeBonusNotice, Attempts: 0}
	s.expectClaim(job)

	deliveryErr := domain.NewDeliveryError(429, 2*time.Minute, errors.New("Too Many Requests"))
	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), job).Return(deliveryErr)
	s.mockService.EXPECT().
		RetryJob(gomock.Any(), int64(3), s.runner.Owner(), s.now.Add(2*time.Minute), deliveryErr).
		Return(nil)

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{Processed: 1, Failed: 1, Retried: 1}, *res)
}

func (s *RunnerTestSuite) TestProcess_ExhaustedRetries() {
	job := domain.NotificationJob{ID: 4, Type: domain.JobTypeBonusNotice, Attempts: 4}
	s.expectClaim(job)

	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), job).Return(errors.New("timeout"))
	s.mockService.EXPECT().
		FailJob(gomock.Any(), int64(4), s.runner.Owner(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ string, cause error) error {
			s.ErrorIs(cause, domain.ErrExhaustedRetries)
			return nil
		})

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{Processed: 1, Failed: 1}, *res)
}

// TestProcess_PermanentErrors Битая нагрузка и неизвестный тип не повторяются.
func (s *RunnerTestSuite) TestProcess_PermanentErrors() {
	broken := domain.NotificationJob{ID: 5, Type: domain.JobTypeBonusNotice}
	unknown := domain.NotificationJob{ID: 6, Type: domain.JobTypeRestockNotice}
	s.expectClaim(broken, unknown)

	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), broken).
		Return(fmt.Errorf("decode: %w", domain.ErrInvalidPayload))
	s.mockService.EXPECT().
		FailJob(gomock.Any(), int64(5), s.runner.Owner(), gomock.Any()).Return(nil)
	s.mockService.EXPECT().
		FailJob(gomock.Any(), int64(6), s.runner.Owner(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ string, cause error) error {
			s.ErrorIs(cause, ErrNoDeliverer)
			return nil
		})

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{Processed: 2, Failed: 2}, *res)
}

func (s *RunnerTestSuite) TestProcess_ClaimLost() {
	job := domain.NotificationJob{ID: 7, Type: domain.JobTypePaymentReminder}
	s.expectClaim(job)

	s.mockDeliverer.EXPECT().Deliver(gomock.Any(), job).Return(nil)
	s.mockService.EXPECT().CompleteJob(gomock.Any(), int64(7), s.runner.Owner()).Return(domain.ErrClaimLost)

	res, err := s.runner.ProcessDueJobs(s.T().Context())
	s.Require().NoError(err)
	s.Equal(Result{Processed: 1}, *res)
}

// memQueue очередь задач в памяти с атомарным захватом.
type memQueue struct {
	mu   sync.Mutex
	jobs map[int64]*domain.NotificationJob
}

func newMemQueue(n int) *memQueue {
	q := &memQueue{jobs: make(map[int64]*domain.NotificationJob, n)}
	for i := 1; i <= n; i++ {
		q.jobs[int64(i)] = &domain.NotificationJob{
			ID:     int64(i),
			Type:   domain.JobTypeBonusNotice,
			Status: domain.JobStatusPending,
		}
	}
	return q
}

func (q *memQueue) ClaimDueJobs(_ context.Context, owner string, limit uint) ([]domain.NotificationJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]int64, 0, len(q.jobs))
	for id, j := range q.jobs {
		if j.Status == domain.JobStatusPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var res []domain.NotificationJob
	for _, id := range ids {
		if uint(len(res)) == limit {
			break
		}
		j := q.jobs[id]
		j.Status = domain.JobStatusProcessing
		j.ClaimedBy = owner
		res = append(res, *j)
	}
	return res, nil
}

func (q *memQueue) finish(id int64, owner string, status domain.JobStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := q.jobs[id]
	if j.Status != domain.JobStatusProcessing || j.ClaimedBy != owner {
		return domain.ErrClaimLost
	}
	j.Status = status
	j.Attempts++
	return nil
}

func (q *memQueue) CompleteJob(_ context.Context, id int64, owner string) error {
	return q.finish(id, owner, domain.JobStatusDone)
}

func (q *memQueue) RetryJob(_ context.Context, id int64, owner string, _ time.Time, _ error) error {
	return q.finish(id, owner, domain.JobStatusPending)
}

func (q *memQueue) FailJob(_ context.Context, id int64, owner string, _ error) error {
	return q.finish(id, owner, domain.JobStatusFailed)
}

func (q *memQueue) ReleaseStaleJobs(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type countingDeliverer struct {
	mu    sync.Mutex
	count map[int64]int
}

func (d *countingDeliverer) Deliver(_ context.Context, job domain.NotificationJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count[job.ID]++
	return nil
}

// TestConcurrentRunnersDeliverOnce Пересекающиеся запуски нескольких исполнителей над общей очередью
// доставляют каждую задачу ровно один раз.
func TestConcurrentRunnersDeliverOnce(t *testing.T) {
	const jobsCount = 200

	queue := newMemQueue(jobsCount)
	deliverer := &countingDeliverer{count: make(map[int64]int)}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	runners := make([]*Runner, 4)
	for i := range runners {
		runners[i] = New(queue, logger).
			SetBatchSize(7).
			SetWorkers(3).
			Register(domain.JobTypeBonusNotice, deliverer)
	}

	var wg sync.WaitGroup
	for _, r := range runners {
		for range 3 {
			wg.Add(1)
			go func(r *Runner) {
				defer wg.Done()
				for {
					res, err := r.ProcessDueJobs(context.Background())
					if err != nil {
						t.Error(err)
						return
					}
					if res.Processed == 0 {
						return
					}
				}
			}(r)
		}
	}
	wg.Wait()

	if len(deliverer.count) != jobsCount {
		t.Fatalf("delivered %d distinct jobs, want %d", len(deliverer.count), jobsCount)
	}
	for id, n := range deliverer.count {
		if n != 1 {
			t.Fatalf("job %d delivered %d times", id, n)
		}
	}
	for id, j := range queue.jobs {
		if j.Status != domain.JobStatusDone {
			t.Fatalf("job %d has status %s", id, j.Status)
		}
	}
}
