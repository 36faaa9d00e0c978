package repoargs

import (
	"time"

	"github.com/osama-agency/telesklad/internal/domain"
)

type CreateJob struct {
	Type        domain.JobType
	TargetID    int64
	UserID      int64
	ScheduledAt time.Time
	Payload     []byte
}

type ClaimJobs struct {
	Owner string
	Now   time.Time
	Limit uint
}

type RescheduleJob struct {
	ID          int64
	Owner       string
	ScheduledAt time.Time
	LastError   string
}
