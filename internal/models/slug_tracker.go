package models

// SlugTrackerModel remembers a slug a record was reachable under before it
// was renamed.
type SlugTrackerModel struct {
	Base
	Tenant
	Slug     string `json:"slug"      gorm:"size:191;index;not null"`
	Type     string `json:"type"      gorm:"size:32;index;not null"`
	TargetID string `json:"target_id" gorm:"type:char(36);index;not null"`
}

func (SlugTrackerModel) TableName() string { return "slug_trackers" }
