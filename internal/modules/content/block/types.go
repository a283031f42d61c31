package block

import (
	"errors"
	"time"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/formengine"
)

type CreateBlockDTO struct {
	ContentBlockID   string               `json:"contentBlockId"   binding:"required"`
	Title            string               `json:"title"            binding:"required"`
	ContentBlockData formengine.ValueTree `json:"contentBlockData"`
}

type UpdateBlockDTO struct {
	Title            *string               `json:"title"`
	ContentBlockData *formengine.ValueTree `json:"contentBlockData"`
}

type SetValueDTO struct {
	Value string `json:"value"`
}

// ListFilter narrows the block list.
type ListFilter struct {
	Search    string
	SectionID string
}

// FormView is the editor state of one block form.
type FormView struct {
	BlockID   string               `json:"blockId"`
	SectionID string               `json:"contentBlockId"`
	Draft     bool                 `json:"draft"`
	Controls  []formengine.Control `json:"controls"`
	Values    formengine.ValueTree `json:"values"`
}

// PreviewField is one rendered field of a block preview. HTML is safe to
// embed; group fields carry one row of sub-fields per entry instead.
type PreviewField struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Type    string           `json:"type"`
	HTML    string           `json:"html,omitempty"`
	Entries [][]PreviewField `json:"entries,omitempty"`
}

type Preview struct {
	BlockID string         `json:"blockId"`
	Draft   bool           `json:"draft"`
	Fields  []PreviewField `json:"fields"`
}

type blockResponse struct {
	ID               string               `json:"id"`
	ContentBlockID   string               `json:"contentBlockId"`
	Title            string               `json:"title"`
	ContentBlockData formengine.ValueTree `json:"contentBlockData"`
	Created          time.Time            `json:"created"`
	Modified         time.Time            `json:"modified"`
}

var (
	errBlockNotFound   = errors.New("content block not found")
	errSectionNotFound = errors.New("section not found")
	errTitleRequired   = errors.New("title is required")
)

func toResponse(m *models.ContentBlockModel) blockResponse {
	data := m.ContentBlockData
	if data == nil {
		data = formengine.ValueTree{}
	}
	return blockResponse{
		ID:               m.ID,
		ContentBlockID:   m.ContentBlockID,
		Title:            m.Title,
		ContentBlockData: data,
		Created:          m.CreatedAt,
		Modified:         m.UpdatedAt,
	}
}
