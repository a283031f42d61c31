package block

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Repository persists content blocks. Get returns nil, nil when the block
// does not exist in the organisation.
type Repository interface {
	List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.ContentBlockModel, response.Pagination, error)
	Get(ctx context.Context, organizationID, id string) (*models.ContentBlockModel, error)
	Create(ctx context.Context, m *models.ContentBlockModel) error
	Update(ctx context.Context, m *models.ContentBlockModel) error
	Delete(ctx context.Context, organizationID, id string) (bool, error)
}

type gormRepository struct{ db *gorm.DB }

// NewRepository returns the MySQL-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.ContentBlockModel, response.Pagination, error) {
	tx := r.db.WithContext(ctx).Model(&models.ContentBlockModel{}).
		Scopes(database.InOrganization(organizationID), database.Search(f.Search, "title")).
		Order("created_at DESC")
	if f.SectionID != "" {
		tx = tx.Where("content_block_id = ?", f.SectionID)
	}
	var items []models.ContentBlockModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (r *gormRepository) Get(ctx context.Context, organizationID, id string) (*models.ContentBlockModel, error) {
	var m models.ContentBlockModel
	err := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) Create(ctx context.Context, m *models.ContentBlockModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) Update(ctx context.Context, m *models.ContentBlockModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormRepository) Delete(ctx context.Context, organizationID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Where("id = ?", id).
		Delete(&models.ContentBlockModel{})
	return res.RowsAffected > 0, res.Error
}
