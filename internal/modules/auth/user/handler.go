package user

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)

	a := g.Group("", authMW)
	a.GET("/me", h.me)
	a.PATCH("/password", h.changePassword)

	u := rg.Group("/users", authMW, middleware.Require(access.ActionManage))
	u.GET("", h.list)
	u.POST("", h.create)
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, errUserNotFound) || errors.Is(err, errWrongPassword) {
			response.ForbiddenMsg(c, "wrong username or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.svc.signer.TTL().Seconds()),
		User:      toResponse(u),
	})
}

// GET /auth/me
func (h *Handler) me(c *gin.Context) {
	ac, _ := middleware.Access(c)
	u, err := h.svc.GetByID(c.Request.Context(), ac.UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.Unauthorized(c)
		return
	}
	out := toResponse(u)
	out.OrganizationID = ac.OrganizationID
	response.OK(c, out)
}

// PATCH /auth/password
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	if err := h.svc.ChangePassword(c.Request.Context(), ac.UserID, dto.OldPassword, dto.NewPassword); err != nil {
		switch {
		case errors.Is(err, errWrongPassword):
			response.ForbiddenMsg(c, "old password is wrong")
		case errors.Is(err, errPasswordSameAsOld):
			response.UnprocessableEntity(c, "new password must differ from the old one")
		case errors.Is(err, errUserNotFound):
			response.Unauthorized(c)
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

// GET /users
func (h *Handler) list(c *gin.Context) {
	ac, _ := middleware.Access(c)
	items, pag, err := h.svc.List(c.Request.Context(), ac, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]*userResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	response.Paged(c, out, pag)
}

// POST /users
func (h *Handler) create(c *gin.Context) {
	var dto CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ac, _ := middleware.Access(c)
	u, err := h.svc.Create(c.Request.Context(), ac, &dto)
	if err != nil {
		switch {
		case errors.Is(err, errDuplicateUsername):
			response.Conflict(c, err.Error())
		case errors.Is(err, errInvalidRole):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toResponse(u))
}
