package contract

import (
	"context"

	models "studioflow/internal/domain/models/contract"
)

// Difference is one variable whose string form differs between two versions
type Difference struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// VersionSummary lists a version without its variables
type VersionSummary struct {
	Version       int      `json:"version"`
	CreatedAt     string   `json:"created_at"`
	ModifiedBy    string   `json:"modified_by"`
	ChangedFields []string `json:"changed_fields"`
	IsCurrent     bool     `json:"is_current"`
}

// VersionService exposes history, comparison and restore
type VersionService interface {
	ListVersions(ctx context.Context, contractID, organizationID string) ([]VersionSummary, error)

	// CompareVersions diffs any two versions; the live version number selects current state
	CompareVersions(ctx context.Context, contractID, organizationID string, from, to int) ([]Difference, error)

	// RestoreVersion snapshots the current state and restores the target as a new version
	RestoreVersion(ctx context.Context, contractID, organizationID string, version int, actor models.Actor) (*models.Contract, error)
}
