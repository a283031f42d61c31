package menu

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Repository persists menus. Lookups return nil, nil when the menu does not
// exist in the organisation.
type Repository interface {
	List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.MenuModel, response.Pagination, error)
	Get(ctx context.Context, organizationID, id string) (*models.MenuModel, error)
	GetBySlug(ctx context.Context, organizationID, slug string) (*models.MenuModel, error)
	Create(ctx context.Context, m *models.MenuModel) error
	Update(ctx context.Context, m *models.MenuModel) error
	SaveTree(ctx context.Context, m *models.MenuModel) error
	Delete(ctx context.Context, organizationID, id string) (bool, error)
}

type gormRepository struct{ db *gorm.DB }

// NewRepository returns the MySQL-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) List(ctx context.Context, organizationID string, q pagination.Query, f ListFilter) ([]models.MenuModel, response.Pagination, error) {
	tx := r.db.WithContext(ctx).Model(&models.MenuModel{}).
		Scopes(database.InOrganization(organizationID), database.Search(f.Search, "name", "slug")).
		Order("created_at DESC")
	var items []models.MenuModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (r *gormRepository) first(ctx context.Context, organizationID, column, value string) (*models.MenuModel, error) {
	var m models.MenuModel
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

func (r *gormRepository) Get(ctx context.Context, organizationID, id string) (*models.MenuModel, error) {
	return r.first(ctx, organizationID, "id", id)
}

func (r *gormRepository) GetBySlug(ctx context.Context, organizationID, slug string) (*models.MenuModel, error) {
	return r.first(ctx, organizationID, "slug", slug)
}

func (r *gormRepository) Create(ctx context.Context, m *models.MenuModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) Update(ctx context.Context, m *models.MenuModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveTree writes only the menu tree column.
func (r *gormRepository) SaveTree(ctx context.Context, m *models.MenuModel) error {
	return r.db.WithContext(ctx).Model(m).Select("menu_json_data", "updated_at").Updates(m).Error
}

func (r *gormRepository) Delete(ctx context.Context, organizationID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Where("id = ?", id).
		Delete(&models.MenuModel{})
	return res.RowsAffected > 0, res.Error
}
