package contract

import (
	"fmt"
	"time"

	models "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

// modifiedBy names the actor in a version snapshot
func modifiedBy(actor models.Actor) string {
	switch {
	case actor.Name != "":
		return actor.Name
	case actor.Email != "":
		return actor.Email
	case actor.UserID != "":
		return actor.UserID
	}
	return string(actor.Role)
}

// Restore makes the variables of history version `version` the live state.
// The current state is pushed onto history first, so nothing is lost. Restoring
// voids every placed field and response and returns the contract to draft.
// Restore is legal from every status except archived; signatures already
// collected are discarded with the fields.
func (m *Machine) Restore(c *models.Contract, version int, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionRestore); err != nil {
		return err
	}
	target, ok := c.HistoryVersion(version)
	if !ok {
		return fmt.Errorf("%w: %d", models.ErrVersionNotFound, version)
	}
	restored := target.Variables.Clone()

	now := m.now()
	previous := c.Version
	recordedAs := preserveCurrent(c, ChangedFields(c.Variables, restored), modifiedBy(actor), now)

	c.Version = recordedAs + 1
	c.Variables = restored
	c.Status = models.StatusDraft
	c.FieldValues = map[string]string{}
	c.SignatureFields = []models.SignatureField{}
	c.AppendAudit(models.NewAuditEvent(models.EventRestored, actor, now, map[string]interface{}{
		"restored_version": version,
		"previous_version": previous,
		"recorded_version": recordedAs,
		"new_version":      c.Version,
	}))
	m.touch(c)
	return nil
}

// preserveCurrent records the live variables in history and returns the
// version number they are reachable under. Edits never bump the live number,
// so when history already holds a different state for it, the live state is
// recorded under the next unused number instead. An unchanged live state that
// is already recorded is not pushed twice.
func preserveCurrent(c *models.Contract, changed []string, by string, at time.Time) int {
	snapshot := c.Snapshot(by, changed, at)
	if recorded, ok := c.HistoryVersion(c.Version); ok {
		if len(ChangedFields(recorded.Variables, c.Variables)) == 0 {
			return c.Version
		}
		snapshot.Version = c.LatestVersion() + 1
	}
	c.AppendHistory(snapshot)
	return snapshot.Version
}

// VariablesAt resolves a version number to its variables. The live version
// number selects the current state; anything else must be in history.
func VariablesAt(c *models.Contract, version int) (models.Variables, error) {
	if version == c.Version {
		return c.Variables, nil
	}
	v, ok := c.HistoryVersion(version)
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrVersionNotFound, version)
	}
	return v.Variables, nil
}

// Compare diffs two versions of the same contract
func Compare(c *models.Contract, from, to int) ([]contractSvc.Difference, error) {
	a, err := VariablesAt(c, from)
	if err != nil {
		return nil, err
	}
	b, err := VariablesAt(c, to)
	if err != nil {
		return nil, err
	}
	return DiffVariables(a, b), nil
}

// Summaries lists history in order followed by the live version
func Summaries(c *models.Contract) []contractSvc.VersionSummary {
	out := make([]contractSvc.VersionSummary, 0, len(c.History)+1)
	for _, v := range c.History {
		out = append(out, contractSvc.VersionSummary{
			Version:       v.Version,
			CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
			ModifiedBy:    v.ModifiedBy,
			ChangedFields: v.ChangedFields,
		})
	}
	out = append(out, contractSvc.VersionSummary{
		Version:       c.Version,
		CreatedAt:     c.UpdatedAt.UTC().Format(time.RFC3339),
		ChangedFields: []string{},
		IsCurrent:     true,
	})
	return out
}
