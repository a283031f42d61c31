package menu

import (
	"errors"
	"time"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/menutree"
)

type CreateMenuDTO struct {
	Name         string           `json:"name"         binding:"required"`
	Slug         string           `json:"slug"         binding:"required"`
	MenuJSONData *[]menutree.Item `json:"menuJSONData"`
}

type UpdateMenuDTO struct {
	Name         *string          `json:"name"`
	Slug         *string          `json:"slug"`
	MenuJSONData *[]menutree.Item `json:"menuJSONData"`
}

type AddItemDTO struct {
	ParentID string `json:"parentId"`
	menutree.Input
}

// MoveDTO is the drag payload of the editor. Parent indexes are -1 for the
// root list; ParentIndex is the destination parent as reported by the drop
// target.
type MoveDTO struct {
	DraggedIndex           *int `json:"draggedIndex"           binding:"required"`
	DraggedItemParentIndex *int `json:"draggedItemParentIndex" binding:"required"`
	TargetIndex            *int `json:"targetIndex"            binding:"required"`
	ParentIndex            *int `json:"parentId"               binding:"required"`
}

// ListFilter narrows the menu list.
type ListFilter struct {
	Search string
}

// EditorView is the editor state of one menu.
type EditorView struct {
	MenuID  string          `json:"menuId"`
	Created bool            `json:"created"`
	Draft   bool            `json:"draft"`
	Items   []menutree.Item `json:"items"`
}

type ItemResult struct {
	Item menutree.Item `json:"item"`
	EditorView
}

type MoveResult struct {
	Moved bool `json:"moved"`
	EditorView
}

type SaveResult struct {
	MenuID       string          `json:"menuId"`
	MenuJSONData []menutree.Item `json:"menuJSONData"`
}

type menuResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	MenuJSONData []menutree.Item `json:"menuJSONData"`
	Created      time.Time       `json:"created"`
	Modified     time.Time       `json:"modified"`
}

type publicMenuResponse struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	MenuJSONData []menutree.Item `json:"menuJSONData"`
}

var (
	errMenuNotFound  = errors.New("menu not found")
	errDuplicateSlug = errors.New("slug already exists")
	errInvalidName   = errors.New("name is required")
)

func toResponse(m *models.MenuModel) menuResponse {
	return menuResponse{
		ID:           m.ID,
		Name:         m.Name,
		Slug:         m.Slug,
		MenuJSONData: m.MenuJSONData,
		Created:      m.CreatedAt,
		Modified:     m.UpdatedAt,
	}
}

func toPublicResponse(m *models.MenuModel) publicMenuResponse {
	items := m.MenuJSONData
	if items == nil {
		items = []menutree.Item{}
	}
	return publicMenuResponse{Name: m.Name, Slug: m.Slug, MenuJSONData: items}
}
