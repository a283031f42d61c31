package block

import (
	"context"
	"strings"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/drafts"
	"github.com/pagecraft/core/internal/pkg/formengine"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

// Schemas resolves the compiled section schema a block is edited against.
// Compiled returns nil, nil when the schema does not exist.
type Schemas interface {
	Compiled(ctx context.Context, organizationID, id string) (*formengine.Schema, error)
	FormOptions() []formengine.Option
}

type Service struct {
	repo     Repository
	schemas  Schemas
	drafts   drafts.Store
	onChange changes.Func
}

func NewService(repo Repository, schemas Schemas, store drafts.Store, onChange changes.Func) *Service {
	return &Service{repo: repo, schemas: schemas, drafts: store, onChange: onChange}
}

func (s *Service) List(ctx context.Context, ac access.Context, q pagination.Query, f ListFilter) ([]models.ContentBlockModel, response.Pagination, error) {
	return s.repo.List(ctx, ac.OrganizationID, q, f)
}

func (s *Service) GetByID(ctx context.Context, ac access.Context, id string) (*models.ContentBlockModel, error) {
	return s.repo.Get(ctx, ac.OrganizationID, id)
}

// Create validates data against the block's section schema and stores the
// submitted value tree. A rejected submit returns *formengine.ValidationError.
func (s *Service) Create(ctx context.Context, ac access.Context, dto *CreateBlockDTO) (*models.ContentBlockModel, error) {
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return nil, errTitleRequired
	}
	payload, err := s.submit(ctx, ac.OrganizationID, dto.ContentBlockID, dto.ContentBlockData)
	if err != nil {
		return nil, err
	}
	m := &models.ContentBlockModel{
		Tenant:           models.Tenant{OrganizationID: ac.OrganizationID},
		ContentBlockID:   payload.ContentBlockID,
		Title:            title,
		ContentBlockData: payload.ContentBlockData,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.notify(ctx, changes.ActionCreate, m)
	return m, nil
}

func (s *Service) Update(ctx context.Context, ac access.Context, id string, dto *UpdateBlockDTO) (*models.ContentBlockModel, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil || m == nil {
		return nil, err
	}
	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if title == "" {
			return nil, errTitleRequired
		}
		m.Title = title
	}
	if dto.ContentBlockData != nil {
		payload, err := s.submit(ctx, ac.OrganizationID, m.ContentBlockID, *dto.ContentBlockData)
		if err != nil {
			return nil, err
		}
		m.ContentBlockData = payload.ContentBlockData
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.notify(ctx, changes.ActionUpdate, m)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, ac access.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, ac.OrganizationID, id)
	if err != nil || !deleted {
		return false, err
	}
	if err := s.drafts.Delete(ctx, draftKey(ac, id)); err != nil {
		return true, err
	}
	s.onChange.Notify(ctx, changes.Change{Kind: changes.KindBlock, Action: changes.ActionDelete, OrganizationID: ac.OrganizationID, ID: id})
	return true, nil
}

func (s *Service) submit(ctx context.Context, organizationID, sectionID string, data formengine.ValueTree) (formengine.Payload, error) {
	schema, err := s.schemas.Compiled(ctx, organizationID, sectionID)
	if err != nil {
		return formengine.Payload{}, err
	}
	if schema == nil {
		return formengine.Payload{}, errSectionNotFound
	}
	return formengine.NewForm(schema, data, s.schemas.FormOptions()...).Submit()
}

func (s *Service) notify(ctx context.Context, action changes.Action, m *models.ContentBlockModel) {
	s.onChange.Notify(ctx, changes.Change{
		Kind:           changes.KindBlock,
		Action:         action,
		OrganizationID: m.OrganizationID,
		ID:             m.ID,
	})
}

func draftKey(ac access.Context, blockID string) string {
	return drafts.Key(ac.OrganizationID, drafts.KindBlock, blockID)
}
