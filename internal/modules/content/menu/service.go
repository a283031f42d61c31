package menu

import (
	"context"
	"strings"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/drafts"
	"github.com/pagecraft/core/internal/pkg/menutree"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
	"github.com/pagecraft/core/internal/pkg/slug"
)

const slugType = "menu"

// SlugHistory keeps old menu slugs resolvable after a rename.
type SlugHistory interface {
	Track(ctx context.Context, organizationID, oldSlug, refType, targetID string) error
	FindBySlug(ctx context.Context, organizationID, slug, refType string) (string, error)
	DeleteByTargetID(ctx context.Context, organizationID, targetID string) error
}

type Service struct {
	repo     Repository
	drafts   drafts.Store
	slugs    SlugHistory
	treeOpts []menutree.Option
	onChange changes.Func
}

func NewService(repo Repository, store drafts.Store, slugs SlugHistory, treeOpts []menutree.Option, onChange changes.Func) *Service {
	return &Service{repo: repo, drafts: store, slugs: slugs, treeOpts: treeOpts, onChange: onChange}
}

func (s *Service) load(items []menutree.Item) *menutree.Tree {
	return menutree.Load(items, s.treeOpts...)
}

func (s *Service) List(ctx context.Context, ac access.Context, q pagination.Query, f ListFilter) ([]models.MenuModel, response.Pagination, error) {
	return s.repo.List(ctx, ac.OrganizationID, q, f)
}

func (s *Service) GetByID(ctx context.Context, ac access.Context, id string) (*models.MenuModel, error) {
	return s.repo.Get(ctx, ac.OrganizationID, id)
}

// GetPublic returns the menu published under slugValue, following renamed
// slugs.
func (s *Service) GetPublic(ctx context.Context, organizationID, slugValue string) (*models.MenuModel, error) {
	m, err := s.repo.GetBySlug(ctx, organizationID, slugValue)
	if err != nil || m != nil || s.slugs == nil {
		return m, err
	}
	targetID, err := s.slugs.FindBySlug(ctx, organizationID, slugValue, slugType)
	if err != nil || targetID == "" {
		return nil, err
	}
	return s.repo.Get(ctx, organizationID, targetID)
}

func (s *Service) Create(ctx context.Context, ac access.Context, dto *CreateMenuDTO) (*models.MenuModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, errInvalidName
	}
	normalized, err := s.checkSlug(ctx, ac.OrganizationID, dto.Slug, "")
	if err != nil {
		return nil, err
	}
	m := &models.MenuModel{
		Tenant: models.Tenant{OrganizationID: ac.OrganizationID},
		Name:   name,
		Slug:   normalized,
	}
	if dto.MenuJSONData != nil {
		m.MenuJSONData = s.load(*dto.MenuJSONData).Items()
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errDuplicateSlug
		}
		return nil, err
	}
	s.notify(ctx, changes.ActionCreate, m)
	return m, nil
}

func (s *Service) Update(ctx context.Context, ac access.Context, id string, dto *UpdateMenuDTO) (*models.MenuModel, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil || m == nil {
		return nil, err
	}
	oldSlug := m.Slug
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, errInvalidName
		}
		m.Name = name
	}
	if dto.Slug != nil {
		normalized, err := s.checkSlug(ctx, ac.OrganizationID, *dto.Slug, m.ID)
		if err != nil {
			return nil, err
		}
		m.Slug = normalized
	}
	if dto.MenuJSONData != nil {
		m.MenuJSONData = s.load(*dto.MenuJSONData).Items()
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errDuplicateSlug
		}
		return nil, err
	}
	if m.Slug != oldSlug && s.slugs != nil {
		if err := s.slugs.Track(ctx, ac.OrganizationID, oldSlug, slugType, m.ID); err != nil {
			return nil, err
		}
	}
	s.notify(ctx, changes.ActionUpdate, m)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, ac access.Context, id string) (bool, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil || m == nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, ac.OrganizationID, id)
	if err != nil || !deleted {
		return false, err
	}
	if err := s.drafts.Delete(ctx, draftKey(ac, id)); err != nil {
		return true, err
	}
	if s.slugs != nil {
		if err := s.slugs.DeleteByTargetID(ctx, ac.OrganizationID, id); err != nil {
			return true, err
		}
	}
	s.notify(ctx, changes.ActionDelete, m)
	return true, nil
}

func (s *Service) checkSlug(ctx context.Context, organizationID, raw, selfID string) (string, error) {
	normalized, err := slug.Normalize(raw)
	if err != nil {
		return "", err
	}
	existing, err := s.repo.GetBySlug(ctx, organizationID, normalized)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.ID != selfID {
		return "", errDuplicateSlug
	}
	return normalized, nil
}

func (s *Service) notify(ctx context.Context, action changes.Action, m *models.MenuModel) {
	s.onChange.Notify(ctx, changes.Change{
		Kind:           changes.KindMenu,
		Action:         action,
		OrganizationID: m.OrganizationID,
		ID:             m.ID,
		Slug:           m.Slug,
	})
}

func draftKey(ac access.Context, menuID string) string {
	return drafts.Key(ac.OrganizationID, drafts.KindMenu, menuID)
}
