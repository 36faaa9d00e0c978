package pgrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/repository/repoargs"
	"github.com/osama-agency/telesklad/pkg/uow"
)

const jobColumns = `id, created_at, updated_at, type::text, target_id, user_id, scheduled_at, payload, status::text,
	attempts, last_error, claimed_by, claimed_at`

type JobRepository struct {
	conn uow.DBTX
}

func NewJobRepository(conn uow.DBTX) *JobRepository {
	return &JobRepository{conn: conn}
}

func (r *JobRepository) Create(ctx context.Context, args repoargs.CreateJob) (*domain.NotificationJob, error) {
	job, err := scanJob(r.conn.QueryRow(ctx, `
		INSERT INTO notification_jobs (type, target_id, user_id, scheduled_at, payload)
		VALUES ($1::job_type, $2, $3, $4, $5)
		RETURNING `+jobColumns,
		string(args.Type), args.TargetID, args.UserID, args.ScheduledAt, args.Payload,
	))
	if err != nil {
		return nil, convertErr(err, "creating %s job for target %d", args.Type, args.TargetID)
	}
	return job, nil
}

// LockTarget берет транзакционную advisory-блокировку на пару (тип, цель). Пока транзакция открыта, другие
// планирования той же пары ждут.
func (r *JobRepository) LockTarget(ctx context.Context, jobType domain.JobType, targetID int64) error {
	_, err := r.conn.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, $2::bigint))`,
		string(jobType), targetID,
	)
	return convertErr(err, "locking %s jobs of target %d", jobType, targetID)
}

// CancelPending переводит ожидающие задачи пары (тип, цель) в cancelled. Возвращает число отмененных задач.
func (r *JobRepository) CancelPending(ctx context.Context, jobType domain.JobType, targetID int64) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notification_jobs SET status = 'cancelled', updated_at = now()
		WHERE type = $1::job_type AND target_id = $2 AND status = 'pending'`,
		string(jobType), targetID,
	)
	if err != nil {
		return 0, convertErr(err, "cancelling %s jobs of target %d", jobType, targetID)
	}
	return tag.RowsAffected(), nil
}

// ClaimDue атомарно захватывает до Limit созревших задач для владельца Owner. Строки, уже заблокированные другим
// исполнителем, пропускаются, поэтому одну задачу не может захватить два исполнителя.
func (r *JobRepository) ClaimDue(ctx context.Context, args repoargs.ClaimJobs) ([]domain.NotificationJob, error) {
	rows, err := r.conn.Query(ctx, `
		UPDATE notification_jobs
		SET status = 'processing', claimed_by = $1, claimed_at = $2, updated_at = now()
		WHERE id IN (
			SELECT id FROM notification_jobs
			WHERE status = 'pending' AND scheduled_at <= $2
			ORDER BY scheduled_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		args.Owner, args.Now, int64(args.Limit), //nolint:gosec
	)
	if err != nil {
		return nil, convertErr(err, "claiming due jobs for %s", args.Owner)
	}
	defer rows.Close()

	var jobs []domain.NotificationJob
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning claimed job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, convertErr(rows.Err(), "iterating claimed jobs")
}

func (r *JobRepository) MarkDone(ctx context.Context, id int64, owner string) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notification_jobs SET status = 'done', attempts = attempts + 1, last_error = '', updated_at = now()
		WHERE id = $1 AND status = 'processing' AND claimed_by = $2`,
		id, owner,
	)
	return claimResult(tag.RowsAffected(), err, "marking job %d as done", id)
}

// Reschedule возвращает задачу в pending с новым временем и увеличенным счетчиком попыток.
func (r *JobRepository) Reschedule(ctx context.Context, args repoargs.RescheduleJob) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'pending', attempts = attempts + 1, scheduled_at = $3, last_error = $4,
			claimed_by = NULL, claimed_at = NULL, updated_at = now()
		WHERE id = $1 AND status = 'processing' AND claimed_by = $2`,
		args.ID, args.Owner, args.ScheduledAt, args.LastError,
	)
	return claimResult(tag.RowsAffected(), err, "rescheduling job %d", args.ID)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id int64, owner, lastErr string) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notification_jobs SET status = 'failed', attempts = attempts + 1, last_error = $3, updated_at = now()
		WHERE id = $1 AND status = 'processing' AND claimed_by = $2`,
		id, owner, lastErr,
	)
	return claimResult(tag.RowsAffected(), err, "marking job %d as failed", id)
}

// ReleaseStale возвращает в pending задачи, захваченные раньше claimedBefore и так и не завершенные.
func (r *JobRepository) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'pending', claimed_by = NULL, claimed_at = NULL, updated_at = now()
		WHERE status = 'processing' AND claimed_at < $1`,
		claimedBefore,
	)
	if err != nil {
		return 0, convertErr(err, "releasing stale jobs claimed before %s", claimedBefore)
	}
	return tag.RowsAffected(), nil
}

func claimResult(affected int64, err error, format string, args ...any) error {
	if err != nil {
		return convertErr(err, format, args...)
	}
	if affected == 0 {
		return fmt.Errorf("[repository/%s] %w", fmt.Sprintf(format, args...), domain.ErrClaimLost)
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.NotificationJob, error) {
	var (
		j         domain.NotificationJob
		jobType   string
		status    string
		claimedBy *string
	)
	if err := row.Scan(
		&j.ID,
		&j.CreatedAt,
		&j.UpdatedAt,
		&jobType,
		&j.TargetID,
		&j.UserID,
		&j.ScheduledAt,
		&j.Payload,
		&status,
		&j.Attempts,
		&j.LastError,
		&claimedBy,
		&j.ClaimedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	j.Type = domain.JobType(jobType)
	j.Status = domain.JobStatus(status)
	if claimedBy != nil {
		j.ClaimedBy = *claimedBy
	}
	return &j, nil
}
