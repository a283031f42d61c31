package section

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
	"github.com/pagecraft/core/internal/pkg/slug"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sections", authMW)

	read := middleware.Require(access.ActionRead)
	g.GET("", read, h.list)
	g.GET("/:id", read, h.get)
	g.GET("/:id/form", read, h.form)

	manage := middleware.Require(access.ActionManage)
	g.POST("", manage, h.create)
	g.PUT("/:id", manage, h.update)
	g.DELETE("/:id", manage, h.delete)
}

// GET /sections?q=&active=
func (h *Handler) list(c *gin.Context) {
	ac, _ := middleware.Access(c)
	f := ListFilter{Search: c.Query("q")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "active must be a boolean")
			return
		}
		f.Active = &active
	}
	items, pag, err := h.svc.List(c.Request.Context(), ac, pagination.FromContext(c), f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]sectionResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	response.Paged(c, out, pag)
}

func (h *Handler) get(c *gin.Context) {
	ac, _ := middleware.Access(c)
	m, err := h.svc.GetByID(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, "section not found")
		return
	}
	response.OK(c, toResponse(m))
}

// GET /sections/:id/form renders an empty form in add mode.
func (h *Handler) form(c *gin.Context) {
	ac, _ := middleware.Access(c)
	controls, err := h.svc.BlankForm(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if controls == nil {
		response.NotFoundMsg(c, "section not found")
		return
	}
	response.OK(c, gin.H{"controls": controls})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	m, warnings, err := h.svc.Create(c.Request.Context(), ac, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, toSavedResponse(m, warnings))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	m, warnings, err := h.svc.Update(c.Request.Context(), ac, c.Param("id"), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, "section not found")
		return
	}
	response.OK(c, toSavedResponse(m, warnings))
}

func (h *Handler) delete(c *gin.Context) {
	ac, _ := middleware.Access(c)
	deleted, err := h.svc.Delete(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, "section not found")
		return
	}
	response.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errDuplicateSlug), errors.Is(err, errSectionInUse):
		response.Conflict(c, err.Error())
	case errors.Is(err, slug.ErrInvalid), errors.Is(err, errInvalidName):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
