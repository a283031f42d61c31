package models

import "github.com/pagecraft/core/internal/pkg/formengine"

// SectionSchemaModel is the field layout content blocks are edited against.
type SectionSchemaModel struct {
	Base
	Tenant
	Slug   string                       `json:"slug"   gorm:"size:191;not null;index"`
	Name   string                       `json:"name"   gorm:"not null"`
	Active bool                         `json:"active" gorm:"not null"`
	Fields []formengine.FieldDefinition `json:"fields" gorm:"type:longtext;serializer:json"`
}

func (SectionSchemaModel) TableName() string { return "section_schemas" }

// ContentBlockModel is one filled-in instance of a section schema.
type ContentBlockModel struct {
	Base
	Tenant
	ContentBlockID   string               `json:"contentBlockId"   gorm:"type:char(36);index;not null"`
	Title            string               `json:"title"            gorm:"not null"`
	ContentBlockData formengine.ValueTree `json:"contentBlockData" gorm:"type:longtext;serializer:json"`
}

func (ContentBlockModel) TableName() string { return "content_blocks" }
