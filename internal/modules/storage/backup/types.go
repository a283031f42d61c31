package backup

import (
	"errors"
	"time"

	"github.com/pagecraft/core/internal/models"
)

const (
	snapshotFormat  = "pagecraft-snapshot"
	snapshotVersion = 1

	// JobName is the scheduler name of the periodic backup.
	JobName = "backup"
)

var errNoOrganization = errors.New("no organization selected")

// Snapshot is the JSON document written for one organisation.
type Snapshot struct {
	Format         string                      `json:"format"`
	Version        int                         `json:"version"`
	OrganizationID string                      `json:"organizationId"`
	CreatedAt      time.Time                   `json:"createdAt"`
	Sections       []models.SectionSchemaModel `json:"sections"`
	Blocks         []models.ContentBlockModel  `json:"blocks"`
	Menus          []models.MenuModel          `json:"menus"`
}

// Artifact describes a written snapshot.
type Artifact struct {
	OrganizationID string `json:"organizationId"`
	Filename       string `json:"filename"`
	Location       string `json:"location"`
	Size           int    `json:"size"`
	Sections       int    `json:"sections"`
	Blocks         int    `json:"blocks"`
	Menus          int    `json:"menus"`
}
