package menu

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/menutree"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
	"github.com/pagecraft/core/internal/pkg/slug"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/menus", authMW)

	read := middleware.Require(access.ActionRead)
	g.GET("", read, h.list)
	g.GET("/:id", read, h.get)
	g.GET("/:id/editor", read, h.editor)

	write := middleware.Require(access.ActionWrite)
	g.POST("", write, h.create)
	g.PUT("/:id", write, h.update)
	g.DELETE("/:id", write, h.delete)

	e := g.Group("/:id/editor", write)
	e.POST("/items", h.addItem)
	e.PATCH("/items/:itemId", h.editItem)
	e.DELETE("/items/:itemId", h.removeItem)
	e.POST("/move", h.move)
	e.POST("/save", h.save)
	e.DELETE("", h.discard)
}

// RegisterPublicRoutes mounts the anonymous read endpoint. The organisation
// is selected with the X-Organization-Id header.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	g := rg.Group("/public/menus", mws...)
	g.GET("/:slug", h.public)
}

// GET /menus?q=
func (h *Handler) list(c *gin.Context) {
	ac, _ := middleware.Access(c)
	items, pag, err := h.svc.List(c.Request.Context(), ac, pagination.FromContext(c), ListFilter{Search: c.Query("q")})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]menuResponse, len(items))
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
		response.NotFoundMsg(c, errMenuNotFound.Error())
		return
	}
	response.OK(c, toResponse(m))
}

// GET /public/menus/:slug
func (h *Handler) public(c *gin.Context) {
	org := strings.TrimSpace(c.GetHeader(middleware.HeaderOrganization))
	if org == "" {
		response.BadRequest(c, "missing "+middleware.HeaderOrganization+" header")
		return
	}
	m, err := h.svc.GetPublic(c.Request.Context(), org, c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, errMenuNotFound.Error())
		return
	}
	response.OK(c, toPublicResponse(m))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateMenuDTO
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
	var dto UpdateMenuDTO
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
		response.NotFoundMsg(c, errMenuNotFound.Error())
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
		response.NotFoundMsg(c, errMenuNotFound.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) editor(c *gin.Context) {
	ac, _ := middleware.Access(c)
	v, err := h.svc.Editor(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, v)
}

// POST /menus/:id/editor/items
func (h *Handler) addItem(c *gin.Context) {
	var dto AddItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	res, err := h.svc.AddItem(c.Request.Context(), ac, c.Param("id"), dto.ParentID, dto.Input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, res)
}

// PATCH /menus/:id/editor/items/:itemId
func (h *Handler) editItem(c *gin.Context) {
	var in menutree.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	res, err := h.svc.EditItem(c.Request.Context(), ac, c.Param("id"), c.Param("itemId"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) removeItem(c *gin.Context) {
	ac, _ := middleware.Access(c)
	v, err := h.svc.RemoveItem(c.Request.Context(), ac, c.Param("id"), c.Param("itemId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, v)
}

// POST /menus/:id/editor/move
func (h *Handler) move(c *gin.Context) {
	var dto MoveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	src := menutree.Position{Index: *dto.DraggedIndex, Parent: *dto.DraggedItemParentIndex}
	dst := menutree.Position{Index: *dto.TargetIndex, Parent: *dto.ParentIndex}
	res, err := h.svc.Move(c.Request.Context(), ac, c.Param("id"), src, dst)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, res)
}

// POST /menus/:id/editor/save
func (h *Handler) save(c *gin.Context) {
	ac, _ := middleware.Access(c)
	res, err := h.svc.Save(c.Request.Context(), ac, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) discard(c *gin.Context) {
	ac, _ := middleware.Access(c)
	if err := h.svc.Discard(c.Request.Context(), ac, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	var invalid menutree.ValidationErrors
	switch {
	case errors.As(err, &invalid):
		response.ValidationFailed(c, "validation failed", invalid)
	case errors.Is(err, errMenuNotFound), errors.Is(err, menutree.ErrNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, menutree.ErrPosition), errors.Is(err, menutree.ErrTooDeep):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errDuplicateSlug):
		response.Conflict(c, err.Error())
	case errors.Is(err, slug.ErrInvalid), errors.Is(err, errInvalidName):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
