package section

import (
	"errors"
	"time"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/formengine"
)

type CreateSectionDTO struct {
	Name   string                       `json:"name"   binding:"required"`
	Slug   string                       `json:"slug"   binding:"required"`
	Active *bool                        `json:"active"`
	Fields []formengine.FieldDefinition `json:"fields"`
}

type UpdateSectionDTO struct {
	Name   *string                       `json:"name"`
	Slug   *string                       `json:"slug"`
	Active *bool                         `json:"active"`
	Fields *[]formengine.FieldDefinition `json:"fields"`
}

// ListFilter narrows the section list.
type ListFilter struct {
	Search string
	Active *bool
}

type sectionResponse struct {
	ID       string                       `json:"id"`
	Slug     string                       `json:"slug"`
	Name     string                       `json:"name"`
	Active   bool                         `json:"active"`
	Fields   []formengine.FieldDefinition `json:"fields"`
	Created  time.Time                    `json:"created"`
	Modified time.Time                    `json:"modified"`
}

type savedResponse struct {
	sectionResponse
	Warnings []formengine.Warning `json:"warnings"`
}

var (
	errDuplicateSlug = errors.New("slug already exists")
	errInvalidName   = errors.New("name is required")
	errSectionInUse  = errors.New("section is used by content blocks")
)

func toResponse(m *models.SectionSchemaModel) sectionResponse {
	fields := m.Fields
	if fields == nil {
		fields = []formengine.FieldDefinition{}
	}
	return sectionResponse{
		ID:       m.ID,
		Slug:     m.Slug,
		Name:     m.Name,
		Active:   m.Active,
		Fields:   fields,
		Created:  m.CreatedAt,
		Modified: m.UpdatedAt,
	}
}

func toSavedResponse(m *models.SectionSchemaModel, warnings []formengine.Warning) savedResponse {
	if warnings == nil {
		warnings = []formengine.Warning{}
	}
	return savedResponse{sectionResponse: toResponse(m), Warnings: warnings}
}
