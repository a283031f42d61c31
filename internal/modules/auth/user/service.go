package user

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pagecraft/core/internal/config"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/jwt"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

const loginFailureDelay = 3 * time.Second

type Service struct {
	repo   Repository
	signer *jwt.Signer
	log    *zap.Logger
	// failDelay slows down lookups of unknown usernames.
	failDelay time.Duration
	now       func() time.Time
}

func NewService(repo Repository, signer *jwt.Signer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, signer: signer, log: log, failDelay: loginFailureDelay, now: time.Now}
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	return s.repo.GetByID(ctx, id)
}

// Login checks the password and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password, ip string) (string, *models.UserModel, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		select {
		case <-time.After(s.failDelay):
		case <-ctx.Done():
		}
		return "", nil, errUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}
	now := s.now()
	if err := s.repo.RecordLogin(ctx, u.ID, now, ip); err != nil {
		s.log.Warn("record login failed", zap.String("user", u.ID), zap.Error(err))
	}
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, err := s.signer.Sign(u.ID, string(access.ParseRole(u.Role)), u.OrganizationID)
	return token, u, err
}

// Bootstrap creates the configured admin when no account exists yet. It
// reports whether an account was created.
func (s *Service) Bootstrap(ctx context.Context, admin config.AdminConfig) (bool, error) {
	if admin.Username == "" || admin.Password == "" {
		return false, nil
	}
	n, err := s.repo.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	if _, err := s.create(ctx, admin.Username, admin.Password, access.RoleAdmin, admin.OrganizationID); err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("username", admin.Username))
	return true, nil
}

func (s *Service) List(ctx context.Context, ac access.Context, q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	return s.repo.List(ctx, ac.OrganizationID, q)
}

// Create adds an account bound to the caller's organisation.
func (s *Service) Create(ctx context.Context, ac access.Context, dto *CreateUserDTO) (*models.UserModel, error) {
	role := access.RoleViewer
	if dto.Role != "" {
		role = access.ParseRole(string(dto.Role))
		if role != access.Role(strings.ToLower(strings.TrimSpace(string(dto.Role)))) {
			return nil, errInvalidRole
		}
	}
	return s.create(ctx, dto.Username, dto.Password, role, ac.OrganizationID)
}

func (s *Service) create(ctx context.Context, username, password string, role access.Role, organizationID string) (*models.UserModel, error) {
	username = strings.TrimSpace(username)
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errDuplicateUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.UserModel{
		Tenant:   models.Tenant{OrganizationID: organizationID},
		Username: username,
		Password: string(hash),
		Role:     string(role),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, oldPwd, newPwd string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return errUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, string(hash))
}
