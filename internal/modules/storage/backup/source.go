package backup

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
)

// Source reads the records a snapshot is built from.
type Source interface {
	Organizations(ctx context.Context) ([]string, error)
	Load(ctx context.Context, organizationID string, snap *Snapshot) error
}

type gormSource struct{ db *gorm.DB }

func NewSource(db *gorm.DB) Source { return &gormSource{db: db} }

// Organizations returns every organisation owning at least one section,
// block or menu.
func (s *gormSource) Organizations(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	for _, m := range []interface{}{&models.SectionSchemaModel{}, &models.ContentBlockModel{}, &models.MenuModel{}} {
		var ids []string
		if err := s.db.WithContext(ctx).Model(m).Distinct().Pluck("organization_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *gormSource) Load(ctx context.Context, organizationID string, snap *Snapshot) error {
	tx := s.db.WithContext(ctx).Scopes(database.InOrganization(organizationID)).Order("created_at ASC").Session(&gorm.Session{})
	if err := tx.Find(&snap.Sections).Error; err != nil {
		return err
	}
	if err := tx.Find(&snap.Blocks).Error; err != nil {
		return err
	}
	return tx.Find(&snap.Menus).Error
}
