package section

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/formengine"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
	"github.com/pagecraft/core/internal/pkg/slug"
)

type Service struct {
	repo         Repository
	log          *zap.Logger
	keepOneEntry bool
	onChange     changes.Func

	mu       sync.Mutex
	compiled map[string]compiledSchema
}

// compiledSchema is a schema compiled from the row version modified at.
type compiledSchema struct {
	modified time.Time
	schema   *formengine.Schema
}

func NewService(repo Repository, log *zap.Logger, keepOneEntry bool, onChange changes.Func) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		log:          log,
		keepOneEntry: keepOneEntry,
		onChange:     onChange,
		compiled:     make(map[string]compiledSchema),
	}
}

// FormOptions returns the options every form over a section schema is
// built with.
func (s *Service) FormOptions() []formengine.Option {
	return []formengine.Option{
		formengine.WithLogger(s.log),
		formengine.WithKeepOneEntry(s.keepOneEntry),
	}
}

func (s *Service) List(ctx context.Context, ac access.Context, q pagination.Query, f ListFilter) ([]models.SectionSchemaModel, response.Pagination, error) {
	return s.repo.List(ctx, ac.OrganizationID, q, f)
}

func (s *Service) GetByID(ctx context.Context, ac access.Context, id string) (*models.SectionSchemaModel, error) {
	return s.repo.Get(ctx, ac.OrganizationID, id)
}

// Compiled loads and compiles the schema with the given id. It returns
// nil, nil when the schema does not exist in the organisation. Compiled
// schemas are reused until the row is modified.
func (s *Service) Compiled(ctx context.Context, organizationID, id string) (*formengine.Schema, error) {
	m, err := s.repo.Get(ctx, organizationID, id)
	if err != nil || m == nil {
		return nil, err
	}
	key := organizationID + "/" + m.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.compiled[key]; ok && c.modified.Equal(m.UpdatedAt) {
		return c.schema, nil
	}
	schema, _ := s.compile(m)
	s.compiled[key] = compiledSchema{modified: m.UpdatedAt, schema: schema}
	return schema, nil
}

func (s *Service) forget(organizationID, id string) {
	s.mu.Lock()
	delete(s.compiled, organizationID+"/"+id)
	s.mu.Unlock()
}

func (s *Service) compile(m *models.SectionSchemaModel) (*formengine.Schema, []formengine.Warning) {
	return formengine.Compile(m.ID, m.Fields, s.FormOptions()...)
}

// BlankForm renders the controls of an empty form over the schema, as the
// block editor shows them in add mode.
func (s *Service) BlankForm(ctx context.Context, ac access.Context, id string) ([]formengine.Control, error) {
	schema, err := s.Compiled(ctx, ac.OrganizationID, id)
	if err != nil || schema == nil {
		return nil, err
	}
	return formengine.NewForm(schema, nil, s.FormOptions()...).Render(formengine.ErrorTree{}), nil
}

func (s *Service) Create(ctx context.Context, ac access.Context, dto *CreateSectionDTO) (*models.SectionSchemaModel, []formengine.Warning, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, nil, errInvalidName
	}
	normalized, err := s.checkSlug(ctx, ac.OrganizationID, dto.Slug, "")
	if err != nil {
		return nil, nil, err
	}
	m := &models.SectionSchemaModel{
		Tenant: models.Tenant{OrganizationID: ac.OrganizationID},
		Slug:   normalized,
		Name:   name,
		Active: true,
		Fields: dto.Fields,
	}
	if dto.Active != nil {
		m.Active = *dto.Active
	}
	_, warnings := s.compile(m)
	if err := s.repo.Create(ctx, m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, nil, errDuplicateSlug
		}
		return nil, nil, err
	}
	s.notify(ctx, changes.ActionCreate, m)
	return m, warnings, nil
}

func (s *Service) Update(ctx context.Context, ac access.Context, id string, dto *UpdateSectionDTO) (*models.SectionSchemaModel, []formengine.Warning, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil || m == nil {
		return nil, nil, err
	}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, nil, errInvalidName
		}
		m.Name = name
	}
	if dto.Slug != nil {
		normalized, err := s.checkSlug(ctx, ac.OrganizationID, *dto.Slug, m.ID)
		if err != nil {
			return nil, nil, err
		}
		m.Slug = normalized
	}
	if dto.Active != nil {
		m.Active = *dto.Active
	}
	if dto.Fields != nil {
		m.Fields = *dto.Fields
	}
	_, warnings := s.compile(m)
	if err := s.repo.Update(ctx, m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, nil, errDuplicateSlug
		}
		return nil, nil, err
	}
	s.forget(ac.OrganizationID, m.ID)
	s.notify(ctx, changes.ActionUpdate, m)
	return m, warnings, nil
}

// Delete removes a schema no content block refers to.
func (s *Service) Delete(ctx context.Context, ac access.Context, id string) (bool, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil || m == nil {
		return false, err
	}
	n, err := s.repo.CountBlocks(ctx, ac.OrganizationID, id)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, errSectionInUse
	}
	deleted, err := s.repo.Delete(ctx, ac.OrganizationID, id)
	if err != nil || !deleted {
		return false, err
	}
	s.forget(ac.OrganizationID, id)
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

func (s *Service) notify(ctx context.Context, action changes.Action, m *models.SectionSchemaModel) {
	s.onChange.Notify(ctx, changes.Change{
		Kind:           changes.KindSection,
		Action:         action,
		OrganizationID: m.OrganizationID,
		ID:             m.ID,
		Slug:           m.Slug,
	})
}
