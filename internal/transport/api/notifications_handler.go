package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osama-agency/telesklad/internal/domain"
	"github.com/osama-agency/telesklad/internal/service"
)

type NotificationsHandler struct {
	notificationSvs NotificationServicer
}

func NewNotificationsHandler(notificationSvs NotificationServicer) *NotificationsHandler {
	return &NotificationsHandler{
		notificationSvs: notificationSvs,
	}
}

type ScheduleParams struct {
	Type     string          `binding:"required,job_type" json:"type"`
	TargetID int64           `binding:"required,gt=0"     json:"target_id"`
	UserID   int64           `binding:"gte=0"             json:"user_id"`
	DueAt    *time.Time      `json:"due_at"`
	Payload  json.RawMessage `binding:"required"          json:"payload"`
}

type JobResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	TargetID    int64     `json:"target_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Schedule POST RouteGroup + NotificationsRoute. Для напоминаний ранее запланированная ожидающая задача
// того же объекта отменяется.
func (h *NotificationsHandler) Schedule(c *gin.Context) {
	var params ScheduleParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	jobType := domain.JobType(params.Type)
	payload, decodeErr := domain.DecodePayload(jobType, params.Payload)
	if decodeErr != nil {
		_ = c.AbortWithError(http.StatusUnprocessableEntity, decodeErr).SetType(gin.ErrorTypePublic)
		return
	}

	args := service.ScheduleArgs{
		Type:     jobType,
		TargetID: params.TargetID,
		UserID:   params.UserID,
		Payload:  payload,
	}
	if params.DueAt != nil {
		args.DueAt = *params.DueAt
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	job, err := h.notificationSvs.Schedule(ctx, args)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, JobResponse{
		ID:          job.ID,
		Type:        string(job.Type),
		TargetID:    job.TargetID,
		Status:      string(job.Status),
		ScheduledAt: job.ScheduledAt,
	})
}

// Cancel DELETE RouteGroup + NotificationCancelRoute. Отмена без ожидающих задач не является ошибкой.
func (h *NotificationsHandler) Cancel(c *gin.Context) {
	jobType := domain.JobType(c.Param("type"))
	if !jobType.IsValid() {
		_ = c.AbortWithError(http.StatusBadRequest, domain.ErrInvalidPayload).SetType(gin.ErrorTypePublic)
		return
	}
	targetID, idErr := paramID(c, "target")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cancelled, err := h.notificationSvs.Cancel(ctx, jobType, targetID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}
