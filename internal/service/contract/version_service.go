package contract

import (
	"context"

	contractModels "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

// versionService implements the VersionService interface
type versionService struct {
	*store
	machine *Machine
}

// NewVersionService creates a new version service
func NewVersionService(deps Dependencies) contractSvc.VersionService {
	st := newStore(deps)
	return &versionService{
		store:   st,
		machine: NewMachine(st.now),
	}
}

// ListVersions lists history followed by the live version
func (s *versionService) ListVersions(ctx context.Context, contractID, organizationID string) ([]contractSvc.VersionSummary, error) {
	c, err := s.contracts.Get(ctx, contractID, organizationID)
	if err != nil {
		return nil, err
	}
	return Summaries(c), nil
}

// CompareVersions diffs two versions of a contract
func (s *versionService) CompareVersions(ctx context.Context, contractID, organizationID string, from, to int) ([]contractSvc.Difference, error) {
	c, err := s.contracts.Get(ctx, contractID, organizationID)
	if err != nil {
		return nil, err
	}
	return Compare(c, from, to)
}

// RestoreVersion restores a history version as the new live version
func (s *versionService) RestoreVersion(ctx context.Context, contractID, organizationID string, version int, actor contractModels.Actor) (*contractModels.Contract, error) {
	c, err := s.contracts.Get(ctx, contractID, organizationID)
	if err != nil {
		return nil, err
	}
	previous := c.Version
	if err := s.machine.Restore(c, version, actor); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract version restored",
		"id", c.ID,
		"restored_version", version,
		"previous_version", previous,
		"new_version", c.Version,
	)
	return c, nil
}
