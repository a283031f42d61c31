package block

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/formengine"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/blocks", authMW)

	read := middleware.Require(access.ActionRead)
	g.GET("", read, h.list)
	g.GET("/:id", read, h.get)
	g.GET("/:id/form", read, h.form)
	g.POST("/:id/preview", read, h.preview)

	write := middleware.Require(access.ActionWrite)
	g.POST("", write, h.create)
	g.PUT("/:id", write, h.update)
	g.DELETE("/:id", write, h.delete)

	f := g.Group("/:id/form", write)
	f.PUT("/fields/:key", h.setField)
	f.PUT("/groups/:key/entries/:index/:subKey", h.setEntryField)
	f.POST("/groups/:key/entries", h.insertEntry)
	f.DELETE("/groups/:key/entries/:index", h.removeEntry)
	f.POST("/submit", h.submit)
	f.DELETE("", h.discard)
}

// GET /blocks?q=&section=
func (h *Handler) list(c *gin.Context) {
	ac, _ := middleware.Access(c)
	items, pag, err := h.svc.List(c.Request.Context(), ac, pagination.FromContext(c), ListFilter{
		Search:    c.Query("q"),
		SectionID: c.Query("section"),
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]blockResponse, len(items))
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
		response.NotFoundMsg(c, errBlockNotFound.Error())
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	m, err := h.svc.Create(c.Request.Context(), ac, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	m, err := h.svc.Update(c.Request.Context(), ac, c.Param("id"), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, errBlockNotFound.Error())
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) delete(c *gin.Context) {
	ac, _ := middleware.Access(c)
	deleted, err := h.svc.Delete(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, errBlockNotFound.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) form(c *gin.Context) {
	ac, _ := middleware.Access(c)
	view, err := h.svc.Form(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, view)
}

// PUT /blocks/:id/form/fields/:key
func (h *Handler) setField(c *gin.Context) {
	var dto SetValueDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	view, err := h.svc.SetField(c.Request.Context(), ac, c.Param("id"), c.Param("key"), dto.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, view)
}

// PUT /blocks/:id/form/groups/:key/entries/:index/:subKey
func (h *Handler) setEntryField(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var dto SetValueDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	view, err := h.svc.SetEntryField(c.Request.Context(), ac, c.Param("id"), c.Param("key"), index, c.Param("subKey"), dto.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, view)
}

// POST /blocks/:id/form/groups/:key/entries?at=N or ?after=N; appends when
// neither is given.
func (h *Handler) insertEntry(c *gin.Context) {
	ac, _ := middleware.Access(c)
	ctx := c.Request.Context()
	var (
		view *FormView
		err  error
	)
	switch {
	case c.Query("after") != "":
		after, convErr := strconv.Atoi(c.Query("after"))
		if convErr != nil {
			response.BadRequest(c, "after must be an integer")
			return
		}
		view, err = h.svc.InsertEntryAfter(ctx, ac, c.Param("id"), c.Param("key"), after)
	case c.Query("at") != "":
		at, convErr := strconv.Atoi(c.Query("at"))
		if convErr != nil || at < 0 {
			response.BadRequest(c, "at must be a non-negative integer")
			return
		}
		view, err = h.svc.InsertEntry(ctx, ac, c.Param("id"), c.Param("key"), at)
	default:
		view, err = h.svc.InsertEntry(ctx, ac, c.Param("id"), c.Param("key"), -1)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) removeEntry(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	ac, _ := middleware.Access(c)
	view, err := h.svc.RemoveEntry(c.Request.Context(), ac, c.Param("id"), c.Param("key"), index)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) submit(c *gin.Context) {
	ac, _ := middleware.Access(c)
	m, err := h.svc.SubmitForm(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) discard(c *gin.Context) {
	ac, _ := middleware.Access(c)
	if err := h.svc.DiscardForm(c.Request.Context(), ac, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) preview(c *gin.Context) {
	ac, _ := middleware.Access(c)
	p, err := h.svc.Preview(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, p)
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.BadRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func writeError(c *gin.Context, err error) {
	var invalid *formengine.ValidationError
	switch {
	case errors.As(err, &invalid):
		response.ValidationFailed(c, "validation failed", invalid.Errors)
	case errors.Is(err, errBlockNotFound), errors.Is(err, errSectionNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, formengine.ErrUnknownField), errors.Is(err, formengine.ErrUnknownSubField):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, formengine.ErrNotGroup), errors.Is(err, formengine.ErrNotScalar),
		errors.Is(err, formengine.ErrEntryIndex), errors.Is(err, errTitleRequired):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
