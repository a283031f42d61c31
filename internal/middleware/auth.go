package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/jwt"
	"github.com/pagecraft/core/internal/pkg/response"
)

const (
	ContextKeyAccess   = "access"
	HeaderOrganization = "X-Organization-Id"
)

// Auth enforces a valid bearer token and stores the caller's access.Context.
func Auth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := signer.Parse(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		ac, err := accessFromClaims(c, claims)
		if err != nil {
			response.ForbiddenMsg(c, err.Error())
			return
		}
		setAccess(c, ac)
		c.Next()
	}
}

// OptionalAuth stores the access context when a valid token is present but
// never blocks the request.
func OptionalAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := signer.Parse(extractToken(c)); err == nil {
			if ac, err := accessFromClaims(c, claims); err == nil {
				setAccess(c, ac)
			}
		}
		c.Next()
	}
}

// Require aborts unless the caller may perform action inside a selected
// organisation.
func Require(action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := Access(c)
		if !ok {
			response.Unauthorized(c)
			return
		}
		switch err := ac.Require(action); {
		case errors.Is(err, access.ErrNoOrganization):
			response.BadRequest(c, "missing "+HeaderOrganization+" header")
			return
		case err != nil:
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// Access returns the access context of an authenticated request.
func Access(c *gin.Context) (access.Context, bool) {
	v, ok := c.Get(ContextKeyAccess)
	if !ok {
		return access.Context{}, false
	}
	ac, ok := v.(access.Context)
	return ac, ok
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := Access(c)
	return ok
}

var errForeignOrganization = errors.New("organization is not accessible with this account")

// accessFromClaims picks the organisation from the explicit header. Accounts
// bound to one organisation may only select that one; admins without a
// binding may select any.
func accessFromClaims(c *gin.Context, claims *jwt.Claims) (access.Context, error) {
	ac := access.Context{
		UserID:         claims.UserID,
		Role:           access.ParseRole(claims.Role),
		OrganizationID: claims.OrganizationID,
	}
	header := strings.TrimSpace(c.GetHeader(HeaderOrganization))
	if header == "" {
		return ac, nil
	}
	if ac.OrganizationID != "" && ac.OrganizationID != header {
		return access.Context{}, errForeignOrganization
	}
	if ac.OrganizationID == "" && ac.Role != access.RoleAdmin {
		return access.Context{}, errForeignOrganization
	}
	ac.OrganizationID = header
	return ac, nil
}

func setAccess(c *gin.Context, ac access.Context) {
	c.Set(ContextKeyAccess, ac)
	c.Request = c.Request.WithContext(access.With(c.Request.Context(), ac))
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
