package user

import (
	"errors"
	"time"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type CreateUserDTO struct {
	Username string      `json:"username" binding:"required,min=3"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     access.Role `json:"role"`
}

type userResponse struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Role           access.Role `json:"role"`
	OrganizationID string      `json:"organizationId"`
	LastLoginTime  *time.Time  `json:"last_login_time"`
	LastLoginIP    string      `json:"last_login_ip"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      *userResponse `json:"user"`
}

var (
	errUserNotFound      = errors.New("user not found")
	errWrongPassword     = errors.New("wrong password")
	errDuplicateUsername = errors.New("username already exists")
	errPasswordSameAsOld = errors.New("password same as old")
	errInvalidRole       = errors.New("role must be viewer, editor or admin")
)

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Role:           access.ParseRole(u.Role),
		OrganizationID: u.OrganizationID,
		LastLoginTime:  u.LastLoginTime,
		LastLoginIP:    u.LastLoginIP,
	}
}
