package section

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Repository persists section schemas. Lookups return nil, nil when the
// record does not exist in the organisation.
type Repository interface {
	List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.SectionSchemaModel, response.Pagination, error)
	Get(ctx context.Context, organizationID, id string) (*models.SectionSchemaModel, error)
	GetBySlug(ctx context.Context, organizationID, slug string) (*models.SectionSchemaModel, error)
	Create(ctx context.Context, m *models.SectionSchemaModel) error
	Update(ctx context.Context, m *models.SectionSchemaModel) error
	Delete(ctx context.Context, organizationID, id string) (bool, error)
	CountBlocks(ctx context.Context, organizationID, sectionID string) (int64, error)
}

type gormRepository struct{ db *gorm.DB }

// NewRepository returns the MySQL-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.SectionSchemaModel, response.Pagination, error) {
	tx := r.db.WithContext(ctx).Model(&models.SectionSchemaModel{}).
		Scopes(database.InOrganization(organizationID), database.Search(f.Search, "name", "slug")).
		Order("created_at DESC")
	if f.Active != nil {
		tx = tx.Where("active = ?", *f.Active)
	}
	var items []models.SectionSchemaModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (r *gormRepository) first(ctx context.Context, organizationID, column, value string) (*models.SectionSchemaModel, error) {
	var m models.SectionSchemaModel
	err := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		First(&m, column+" = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) Get(ctx context.Context, organizationID, id string) (*models.SectionSchemaModel, error) {
	return r.first(ctx, organizationID, "id", id)
}

func (r *gormRepository) GetBySlug(ctx context.Context, organizationID, slug string) (*models.SectionSchemaModel, error) {
	return r.first(ctx, organizationID, "slug", slug)
}

func (r *gormRepository) Create(ctx context.Context, m *models.SectionSchemaModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) Update(ctx context.Context, m *models.SectionSchemaModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormRepository) Delete(ctx context.Context, organizationID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Where("id = ?", id).
		Delete(&models.SectionSchemaModel{})
	return res.RowsAffected > 0, res.Error
}

func (r *gormRepository) CountBlocks(ctx context.Context, organizationID, sectionID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ContentBlockModel{}).
		Scopes(database.InOrganization(organizationID)).
		Where("content_block_id = ?", sectionID).
		Count(&n).Error
	return n, err
}
