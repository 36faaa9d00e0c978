package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JobsHandler struct {
	jobs JobProcessor
}

func NewJobsHandler(jobs JobProcessor) *JobsHandler {
	return &JobsHandler{
		jobs: jobs,
	}
}

type JobsRunResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Retried   int `json:"retried"`
}

// Run POST RouteGroup + JobsRunRoute. Обрабатывает одну пачку созревших задач, не дожидаясь очередного тика
// фонового исполнителя.
func (h *JobsHandler) Run(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, JobsRunTimeout)
	defer cancel()

	res, err := h.jobs.ProcessDueJobs(ctx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusOK, JobsRunResponse(*res))
}
