package models

import "github.com/pagecraft/core/internal/pkg/menutree"

// MenuModel stores a navigation menu. A nil MenuJSONData means no tree has
// been saved yet.
type MenuModel struct {
	Base
	Tenant
	Name         string          `json:"name"         gorm:"not null"`
	Slug         string          `json:"slug"         gorm:"size:191;not null;index"`
	MenuJSONData []menutree.Item `json:"menuJSONData" gorm:"type:longtext;serializer:json"`
}

func (MenuModel) TableName() string { return "menus" }
