package slugtracker

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Service provides slug tracking operations.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Track records that oldSlug of refType in the organisation now points to
// targetID.
func (s *Service) Track(ctx context.Context, organizationID, oldSlug, refType, targetID string) error {
	tracker := models.SlugTrackerModel{
		Tenant:   models.Tenant{OrganizationID: organizationID},
		Slug:     oldSlug,
		Type:     refType,
		TargetID: targetID,
	}
	return s.db.WithContext(ctx).
		Where("organization_id = ? AND slug = ? AND type = ?", organizationID, oldSlug, refType).
		Assign(models.SlugTrackerModel{TargetID: targetID}).
		FirstOrCreate(&tracker).Error
}

// FindBySlug returns the current targetID for the given old slug, or ("", nil).
func (s *Service) FindBySlug(ctx context.Context, organizationID, slug, refType string) (string, error) {
	var tracker models.SlugTrackerModel
	err := s.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Where("slug = ? AND type = ?", slug, refType).
		First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tracker.TargetID, nil
}

// DeleteByTargetID removes all tracker entries for a given record.
func (s *Service) DeleteByTargetID(ctx context.Context, organizationID, targetID string) error {
	return s.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Where("target_id = ?", targetID).
		Delete(&models.SlugTrackerModel{}).Error
}

// PruneMenus removes menu slug entries whose menu no longer exists.
func (s *Service) PruneMenus(ctx context.Context) (int64, error) {
	live := s.db.Model(&models.MenuModel{}).Select("id")
	res := s.db.WithContext(ctx).
		Where("type = ? AND target_id NOT IN (?)", "menu", live).
		Delete(&models.SlugTrackerModel{})
	return res.RowsAffected, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/slug-tracker", authMW)
	g.GET("/:type/:slug", middleware.Require(access.ActionRead), h.lookup)
	g.DELETE("/:type/:slug", middleware.Require(access.ActionManage), h.remove)
}

func (h *Handler) lookup(c *gin.Context) {
	ac, _ := middleware.Access(c)
	refType := c.Param("type")
	slug := c.Param("slug")

	targetID, err := h.svc.FindBySlug(c.Request.Context(), ac.OrganizationID, slug, refType)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if targetID == "" {
		response.NotFoundMsg(c, "slug is not tracked")
		return
	}
	response.OK(c, gin.H{"target_id": targetID, "type": refType, "slug": slug})
}

func (h *Handler) remove(c *gin.Context) {
	ac, _ := middleware.Access(c)
	if err := h.svc.db.WithContext(c.Request.Context()).
		Scopes(database.InOrganization(ac.OrganizationID)).
		Where("slug = ? AND type = ?", c.Param("slug"), c.Param("type")).
		Delete(&models.SlugTrackerModel{}).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
