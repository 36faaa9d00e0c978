package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

// NotificationService планировщик отложенных уведомлений поверх таблицы задач.
type NotificationService struct {
	uow     uow.UOW
	jobRepo JobRepository
	l       *logrus.Entry
	now     func() time.Time
}

func NewNotificationService(u uow.UOW, l *logrus.Logger) (*NotificationService, error) {
	jobRepo, err := connRepo[JobRepository](u, repoargs.JobRepoName)
	if err != nil {
		return nil, err
	}
	return &NotificationService{
		uow:     u,
		jobRepo: jobRepo,
		l: l.WithFields(logrus.Fields{
			"component": "service",
			"module":    "notifications",
		}),
		now: time.Now,
	}, nil
}

type ScheduleArgs struct {
	// Type можно не указывать, тогда он берется из Payload.
	Type     domain.JobType
	TargetID int64
	UserID   int64
	DueAt    time.Time
	Payload  domain.JobPayload
}

// Schedule ставит задачу в очередь в собственной транзакции.
func (n *NotificationService) Schedule(ctx context.Context, args ScheduleArgs) (*domain.NotificationJob, error) {
	var job *domain.NotificationJob
	txErr := n.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		job, err = n.ScheduleTx(c, tx, args)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return job, nil
}

// ScheduleTx ставит задачу в очередь в транзакции вызывающего.
//
// Для напоминаний (domain.JobType.IsReminder) сначала берется блокировка на пару (тип, цель), затем отменяются
// ожидающие задачи этой пары и только потом вставляется новая. Так в любой момент существует не более одного
// ожидающего напоминания на цель.
func (n *NotificationService) ScheduleTx(
	ctx context.Context,
	tx uow.TX,
	args ScheduleArgs,
) (*domain.NotificationJob, error) {
	jobType, payload, err := n.validate(args)
	if err != nil {
		return nil, err
	}

	repo, repoErr := txRepo[JobRepository](tx, repoargs.JobRepoName)
	if repoErr != nil {
		return nil, repoErr
	}

	if jobType.IsReminder() {
		if lockErr := repo.LockTarget(ctx, jobType, args.TargetID); lockErr != nil {
			return nil, fmt.Errorf("schedule %s: %w", jobType, lockErr)
		}
		cancelled, cancelErr := repo.CancelPending(ctx, jobType, args.TargetID)
		if cancelErr != nil {
			return nil, fmt.Errorf("schedule %s: %w", jobType, cancelErr)
		}
		if cancelled > 0 {
			n.l.WithFields(logrus.Fields{
				"type":      jobType,
				"targetID":  args.TargetID,
				"cancelled": cancelled,
			}).Debug("superseded pending reminder")
		}
	}

	dueAt := args.DueAt
	if dueAt.IsZero() {
		dueAt = n.now()
	}

	job, createErr := repo.Create(ctx, repoargs.CreateJob{
		Type:        jobType,
		TargetID:    args.TargetID,
		UserID:      args.UserID,
		ScheduledAt: dueAt,
		Payload:     payload,
	})
	if createErr != nil {
		return nil, fmt.Errorf("schedule %s: %w", jobType, createErr)
	}
	return job, nil
}

func (n *NotificationService) validate(args ScheduleArgs) (domain.JobType, []byte, error) {
	if args.Payload == nil {
		return "", nil, fmt.Errorf("schedule: %w", domain.ErrInvalidPayload)
	}
	jobType := args.Type
	if jobType == "" {
		jobType = args.Payload.JobType()
	}
	if !jobType.IsValid() || jobType != args.Payload.JobType() {
		return "", nil, fmt.Errorf(
			"schedule %s with %s payload: %w", jobType, args.Payload.JobType(), domain.ErrInvalidPayload,
		)
	}
	payload, err := domain.EncodePayload(args.Payload)
	if err != nil {
		return "", nil, err //nolint:wrapcheck
	}
	return jobType, payload, nil
}

// Cancel отменяет ожидающие задачи пары (тип, цель). Если отменять нечего, это не ошибка.
func (n *NotificationService) Cancel(ctx context.Context, jobType domain.JobType, targetID int64) (int64, error) {
	var cancelled int64
	txErr := n.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		cancelled, err = n.CancelTx(c, tx, jobType, targetID)
		return err
	})
	if txErr != nil {
		return 0, txErr
	}
	return cancelled, nil
}

func (n *NotificationService) CancelTx(
	ctx context.Context,
	tx uow.TX,
	jobType domain.JobType,
	targetID int64,
) (int64, error) {
	repo, err := txRepo[JobRepository](tx, repoargs.JobRepoName)
	if err != nil {
		return 0, err
	}
	cancelled, cancelErr := repo.CancelPending(ctx, jobType, targetID)
	if cancelErr != nil {
		return 0, fmt.Errorf("cancel %s jobs of %d: %w", jobType, targetID, cancelErr)
	}
	return cancelled, nil
}

// ClaimDueJobs захватывает созревшие задачи для исполнителя owner.
func (n *NotificationService) ClaimDueJobs(
	ctx context.Context,
	owner string,
	limit uint,
) ([]domain.NotificationJob, error) {
	jobs, err := n.jobRepo.ClaimDue(ctx, repoargs.ClaimJobs{Owner: owner, Now: n.now(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("claim due jobs: %w", err)
	}
	return jobs, nil
}

func (n *NotificationService) CompleteJob(ctx context.Context, id int64, owner string) error {
	return n.jobRepo.MarkDone(ctx, id, owner) //nolint:wrapcheck
}

// RetryJob возвращает задачу в очередь со сдвигом времени исполнения.
func (n *NotificationService) RetryJob(ctx context.Context, id int64, owner string, at time.Time, cause error) error {
	return n.jobRepo.Reschedule(ctx, repoargs.RescheduleJob{ //nolint:wrapcheck
		ID:          id,
		Owner:       owner,
		ScheduledAt: at,
		LastError:   errText(cause),
	})
}

func (n *NotificationService) FailJob(ctx context.Context, id int64, owner string, cause error) error {
	return n.jobRepo.MarkFailed(ctx, id, owner, errText(cause)) //nolint:wrapcheck
}

// ReleaseStaleJobs возвращает в очередь задачи, захваченные дольше lease назад. Такие задачи остаются после
// аварийной остановки исполнителя.
func (n *NotificationService) ReleaseStaleJobs(ctx context.Context, lease time.Duration) (int64, error) {
	released, err := n.jobRepo.ReleaseStale(ctx, n.now().Add(-lease))
	if err != nil {
		return 0, fmt.Errorf("release stale jobs: %w", err)
	}
	if released > 0 {
		n.l.WithField("released", released).Warn("released stale job claims")
	}
	return released, nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
