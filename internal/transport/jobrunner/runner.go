// Package jobrunner доставляет отложенные уведомления из очереди задач.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/metrics"
	"github.com/osama-agency/telesklad/internal/tracing"
)

const (
	defaultServiceTimeout        = 3 * time.Second
	defaultDeliveryTimeout       = 15 * time.Second
	defaultBatchSize        uint = 100
	defaultWorkers          uint = 10
	defaultPollInterval          = 30 * time.Second
	defaultMaxAttempts           = 5
	defaultBackoff               = time.Minute
	defaultClaimLease            = 10 * time.Minute
)

const (
	resultDone    = "done"
	resultRetry   = "retry"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// Runner обрабатывает созревшие задачи уведомлений.
type Runner struct {
	svs        Servicer
	deliverers map[domain.JobType]Deliverer
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	l          *logrus.Entry
	now        func() time.Time

	owner        string
	batchSize    uint
	workers      uint
	pollInterval time.Duration
	maxAttempts  int
	backoff      time.Duration
	claimLease   time.Duration
}

// New создает исполнителя с уникальным идентификатором, под которым он захватывает задачи.
func New(svs Servicer, l *logrus.Logger) *Runner {
	owner := uuid.NewString()
	return &Runner{
		svs:        svs,
		deliverers: make(map[domain.JobType]Deliverer),
		tracer:     tracing.Tracer(),
		l: l.WithFields(logrus.Fields{
			"component": "jobrunner",
			"module":    "runner",
			"owner":     owner,
		}),
		now:          time.Now,
		owner:        owner,
		batchSize:    defaultBatchSize,
		workers:      defaultWorkers,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
		backoff:      defaultBackoff,
		claimLease:   defaultClaimLease,
	}
}

// Register назначает доставщика для типа задач.
func (r *Runner) Register(jobType domain.JobType, d Deliverer) *Runner {
	r.deliverers[jobType] = d
	return r
}

// SetBatchSize устанавливает кол-во задач, захватываемых за одну итерацию.
func (r *Runner) SetBatchSize(size uint) *Runner {
	if size > 0 {
		r.batchSize = size
	}
	return r
}

// SetWorkers устанавливает кол-во воркеров, параллельно доставляющих задачи.
func (r *Runner) SetWorkers(workers uint) *Runner {
	if workers > 0 {
		r.workers = workers
	}
	return r
}

func (r *Runner) SetPollInterval(d time.Duration) *Runner {
	if d > 0 {
		r.pollInterval = d
	}
	return r
}

// SetMaxAttempts устанавливает потолок попыток доставки, после которого задача помечается failed.
func (r *Runner) SetMaxAttempts(n int) *Runner {
	if n > 0 {
		r.maxAttempts = n
	}
	return r
}

func (r *Runner) SetBackoff(d time.Duration) *Runner {
	if d > 0 {
		r.backoff = d
	}
	return r
}

// SetClaimLease устанавливает время, после которого захваченная задача считается брошенной.
func (r *Runner) SetClaimLease(d time.Duration) *Runner {
	if d > 0 {
		r.claimLease = d
	}
	return r
}

func (r *Runner) SetMetrics(m *metrics.Metrics) *Runner {
	r.metrics = m
	return r
}

func (r *Runner) Owner() string {
	return r.owner
}

// Result итог обработки одной пачки задач.
type Result struct {
	Processed int
	Succeeded int
	// Failed задачи, которые не удалось доставить в этой итерации, включая отложенные на повтор.
	Failed int
	// Retried часть Failed, возвращенная в очередь.
	Retried int
}

// Run обрабатывает очередь с периодом pollInterval до отмены контекста.
func (r *Runner) Run(ctx context.Context) {
	r.l.WithFields(logrus.Fields{
		"batchSize":    r.batchSize,
		"workers":      r.workers,
		"pollInterval": r.pollInterval,
		"maxAttempts":  r.maxAttempts,
	}).Info("Starting")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		if res, err := r.ProcessDueJobs(ctx); err != nil {
			r.l.WithError(err).Error("process due jobs")
		} else if res.Processed > 0 {
			r.l.WithFields(logrus.Fields{
				"processed": res.Processed,
				"succeeded": res.Succeeded,
				"failed":    res.Failed,
			}).Info("batch processed")
		}

		select {
		case <-ctx.Done():
			r.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDueJobs захватывает созревшие задачи, доставляет их пулом воркеров и фиксирует результат каждой.
// Захват атомарен, поэтому параллельные вызовы (в том числе из разных процессов) не доставляют одну задачу дважды.
func (r *Runner) ProcessDueJobs(ctx context.Context) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "Runner.ProcessDueJobs")
	defer span.End()

	started := time.Now()
	defer func() { r.metrics.ObserveBatch(time.Since(started)) }()

	r.releaseStale(ctx)

	jobs, err := r.claim(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("process due jobs: %w", err)
	}
	span.SetAttributes(attribute.Int("jobs.claimed", len(jobs)))

	res := &Result{Processed: len(jobs)}
	if len(jobs) == 0 {
		return res, nil
	}

	for _, wr := range r.runWorkers(ctx, jobs) {
		switch r.settle(ctx, wr) {
		case resultDone:
			res.Succeeded++
		case resultRetry:
			res.Failed++
			res.Retried++
		case resultFailed:
			res.Failed++
		}
	}
	return res, nil
}

func (r *Runner) releaseStale(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()
	if _, err := r.svs.ReleaseStaleJobs(reqCtx, r.claimLease); err != nil {
		r.l.WithError(err).Warn("release stale jobs")
	}
}

func (r *Runner) claim(ctx context.Context) ([]domain.NotificationJob, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	jobs, err := r.svs.ClaimDueJobs(reqCtx, r.owner, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	return jobs, nil
}

// workerResult результат доставки одной задачи.
type workerResult struct {
	WorkerID uint
	Job      domain.NotificationJob
	Error    error

	// Abandoned доставка не начиналась из-за остановки исполнителя.
	Abandoned bool
}

// runWorkers раздает задачи воркерам и ждет окончания их работы (fan-out/fan-in).
func (r *Runner) runWorkers(ctx context.Context, jobs []domain.NotificationJob) []workerResult {
	taskCh := make(chan domain.NotificationJob, len(jobs))
	for _, job := range jobs {
		taskCh <- job
	}
	close(taskCh)

	workers := min(r.workers, uint(len(jobs)))
	resultCh := make(chan workerResult, len(jobs))

	wg := new(sync.WaitGroup)
	wg.Add(int(workers)) //nolint:gosec
	for i := range workers {
		go r.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(jobs))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

func (r *Runner) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan domain.NotificationJob,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for job := range taskCh {
		if ctxErr := ctx.Err(); ctxErr != nil {
			resultCh <- workerResult{WorkerID: workerID, Job: job, Error: ctxErr, Abandoned: true}
			continue
		}
		resultCh <- workerResult{WorkerID: workerID, Job: job, Error: r.deliver(ctx, job)}
	}
}

func (r *Runner) deliver(ctx context.Context, job domain.NotificationJob) error {
	d, ok := r.deliverers[job.Type]
	if !ok {
		return fmt.Errorf("%s: %w", job.Type, ErrNoDeliverer)
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultDeliveryTimeout)
	defer cancel()
	return d.Deliver(reqCtx, job) //nolint:wrapcheck
}

// settle фиксирует результат доставки. Номер текущей попытки равен job.Attempts+1, счетчик в хранилище
// увеличивается при записи результата.
func (r *Runner) settle(ctx context.Context, wr workerResult) string {
	job := wr.Job
	attempt := job.Attempts + 1
	l := r.l.WithFields(logrus.Fields{
		"worker":  wr.WorkerID,
		"jobID":   job.ID,
		"type":    job.Type,
		"attempt": attempt,
	})

	if wr.Abandoned {
		// Задача остается захваченной и вернется в очередь после истечения аренды.
		l.Info("runner stopped before delivery")
		return resultSkipped
	}

	// Запись результата не должна срываться из-за остановки, начатой во время доставки.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultServiceTimeout)
	defer cancel()

	var (
		result    string
		settleErr error
	)
	switch {
	case wr.Error == nil:
		result = resultDone
		settleErr = r.svs.CompleteJob(reqCtx, job.ID, r.owner)
		l.Debug("delivered")
	case isPermanent(wr.Error):
		result = resultFailed
		settleErr = r.svs.FailJob(reqCtx, job.ID, r.owner, wr.Error)
		l.WithError(wr.Error).Error("job cannot be delivered")
	case attempt >= r.maxAttempts:
		result = resultFailed
		cause := fmt.Errorf("%w: %w", domain.ErrExhaustedRetries, wr.Error)
		settleErr = r.svs.FailJob(reqCtx, job.ID, r.owner, cause)
		l.WithError(cause).Error("job failed terminally, manual follow-up required")
	default:
		result = resultRetry
		delay := backoff(attempt, r.backoff, wr.Error)
		settleErr = r.svs.RetryJob(reqCtx, job.ID, r.owner, r.now().Add(delay), wr.Error)
		l.WithError(wr.Error).WithField("retryIn", delay).Warn("delivery failed, rescheduled")
	}

	if settleErr != nil {
		if errors.Is(settleErr, domain.ErrClaimLost) {
			l.Warn("job claim lost before result was saved")
			result = resultSkipped
		} else {
			l.WithError(settleErr).Error("save job result")
		}
	}

	r.metrics.JobProcessed(string(job.Type), result)
	return result
}
