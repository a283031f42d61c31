package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Repository persists accounts. Lookups return nil, nil when the user does
// not exist.
type Repository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, organizationID string, q pagination.Query) ([]models.UserModel, response.Pagination, error)
	GetByID(ctx context.Context, id string) (*models.UserModel, error)
	GetByUsername(ctx context.Context, username string) (*models.UserModel, error)
	Create(ctx context.Context, u *models.UserModel) error
	RecordLogin(ctx context.Context, id string, at time.Time, ip string) error
	SetPassword(ctx context.Context, id, hash string) error
}

type gormRepository struct{ db *gorm.DB }

// NewRepository returns the MySQL-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&n).Error
	return n, err
}

func (r *gormRepository) List(ctx context.Context, organizationID string, q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	tx := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("organization_id = ? OR organization_id = ''", organizationID).
		Order("created_at ASC")
	var items []models.UserModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (r *gormRepository) first(ctx context.Context, query string, arg string) (*models.UserModel, error) {
	var u models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepository) GetByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *gormRepository) Create(ctx context.Context, u *models.UserModel) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicateKey(err) {
		return errDuplicateUsername
	}
	return err
}

func (r *gormRepository) RecordLogin(ctx context.Context, id string, at time.Time, ip string) error {
	return r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_time": at,
			"last_login_ip":   ip,
		}).Error
}

func (r *gormRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).
		Update("password", hash).Error
}
