package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	source Source
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(source Source, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, store: store, logger: logger.Named("BackupService"), now: time.Now}
}

// Create snapshots one organisation and hands the JSON to the store.
func (s *Service) Create(ctx context.Context, organizationID string) (*Artifact, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, errNoOrganization
	}
	now := s.now().UTC()
	snap := &Snapshot{
		Format:         snapshotFormat,
		Version:        snapshotVersion,
		OrganizationID: organizationID,
		CreatedAt:      now,
	}
	if err := s.source.Load(ctx, organizationID, snap); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("backup-%s.json", now.Format("2006-01-02T15-04-05"))
	location, err := s.store.Put(ctx, organizationID+"/"+filename, payload)
	if err != nil {
		s.logger.Warn("backup failed", zap.String("organization", organizationID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("backup written", zap.String("organization", organizationID), zap.String("location", location))
	return &Artifact{
		OrganizationID: organizationID,
		Filename:       filename,
		Location:       location,
		Size:           len(payload),
		Sections:       len(snap.Sections),
		Blocks:         len(snap.Blocks),
		Menus:          len(snap.Menus),
	}, nil
}

// RunAll snapshots every organisation. One failing organisation does not
// stop the others; the joined error is returned.
func (s *Service) RunAll(ctx context.Context) error {
	orgs, err := s.source.Organizations(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, org := range orgs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.Create(ctx, org); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", org, err))
		}
	}
	return errors.Join(errs...)
}
