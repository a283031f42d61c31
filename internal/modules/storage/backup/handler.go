package backup

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/cron"
	"github.com/pagecraft/core/internal/pkg/response"
)

type Handler struct {
	svc       *Service
	scheduler *cron.Scheduler
}

func NewHandler(svc *Service, scheduler *cron.Scheduler) *Handler {
	return &Handler{svc: svc, scheduler: scheduler}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/backups", authMW, middleware.Require(access.ActionManage))
	g.POST("", h.create)
	g.GET("/jobs", h.jobs)
	g.POST("/jobs/:name/run", h.runJob)
}

// POST /backups
func (h *Handler) create(c *gin.Context) {
	ac, _ := middleware.Access(c)
	artifact, err := h.svc.Create(c.Request.Context(), ac.OrganizationID)
	if err != nil {
		if errors.Is(err, errNoOrganization) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, artifact)
}

// GET /backups/jobs
func (h *Handler) jobs(c *gin.Context) {
	if h.scheduler == nil {
		response.OK(c, []cron.ListItem{})
		return
	}
	response.OK(c, h.scheduler.List())
}

// POST /backups/jobs/:name/run
func (h *Handler) runJob(c *gin.Context) {
	if h.scheduler == nil {
		response.NotFound(c)
		return
	}
	err := h.scheduler.Run(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, cron.ErrJobNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, cron.ErrJobRunning):
		response.Conflict(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.NoContent(c)
	}
}

// Job returns the scheduler entry running RunAll every interval.
func Job(svc *Service, interval time.Duration) cron.Job {
	return cron.Job{
		Name:        JobName,
		Description: "snapshot sections, blocks and menus of every organization",
		Interval:    interval,
		Fn:          svc.RunAll,
	}
}
