package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studioflow/internal/domain"
	models "studioflow/internal/domain/models/contract"
)

// Machine applies lifecycle transitions to an in-memory contract. It never
// persists anything; callers write the mutated document in one Put so the
// responses, status change and audit events land together.
type Machine struct {
	now func() time.Time
}

// NewMachine creates a state machine using the given clock (time.Now when nil)
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now}
}

// Now returns the machine's current time
func (m *Machine) Now() time.Time {
	return m.now()
}

func requireProvider(actor models.Actor) error {
	if !actor.IsProvider() {
		return models.ErrProviderOnly
	}
	return nil
}

func requireAction(c *models.Contract, action models.Action) error {
	if !models.CanPerform(c.Status, action) {
		return fmt.Errorf("%w: cannot %s a %s contract", models.ErrInvalidTransition, action, c.Status)
	}
	return nil
}

func (m *Machine) touch(c *models.Contract) {
	c.UpdatedAt = m.now()
}

// ReplaceFields installs a freshly placed field set. The previous set is dropped
// entirely; responses keyed by dropped IDs stay stored but are no longer rendered.
func (m *Machine) ReplaceFields(c *models.Contract, fields []models.SignatureField, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionPrepare); err != nil {
		return err
	}
	for _, f := range fields {
		if _, ok := c.Party(f.PartyID); !ok {
			return fmt.Errorf("field %s references %w: %s", f.ID, models.ErrPartyNotFound, f.PartyID)
		}
	}

	placed := make([]models.SignatureField, len(fields))
	copy(placed, fields)
	c.SignatureFields = placed
	c.AppendAudit(models.NewAuditEvent(models.EventFieldsPlaced, actor, m.now(), map[string]interface{}{
		"field_count": len(placed),
	}))
	m.touch(c)
	return nil
}

// partyResponses keeps only responses addressed to the party's own fields
func partyResponses(c *models.Contract, partyID string, values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for id, v := range values {
		if f, ok := c.Field(id); ok && f.PartyID == partyID {
			out[id] = v
		}
	}
	return out
}

// mergedComplete reports whether the party would be complete after merging values
func mergedComplete(c *models.Contract, partyID string, values map[string]string) bool {
	merged := make(map[string]string, len(c.FieldValues)+len(values))
	for k, v := range c.FieldValues {
		merged[k] = v
	}
	for k, v := range values {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	filled, required := models.CompletionCount(c.FieldsForParty(partyID), merged)
	return filled == required
}

// ProviderSign records the provider's responses and sends the contract (Draft → Sent)
func (m *Machine) ProviderSign(c *models.Contract, values map[string]string, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionProviderSign); err != nil {
		return err
	}
	provider, ok := c.ProviderParty()
	if !ok {
		return fmt.Errorf("provider %w", models.ErrPartyNotFound)
	}

	responses := partyResponses(c, provider.ID, values)
	if !mergedComplete(c, provider.ID, responses) {
		return models.ErrIncomplete
	}

	now := m.now()
	c.MergeFieldValues(responses)
	c.Status = models.StatusSent
	actor.PartyID = provider.ID
	c.AppendAudit(models.NewAuditEvent(models.EventSigned, actor, now, map[string]interface{}{
		"party_id": provider.ID,
	}))
	c.AppendAudit(models.NewAuditEvent(models.EventSent, actor, now, nil))
	m.touch(c)
	return nil
}

// MarkViewed moves a sent contract to viewed the first time a client opens it.
// It reports whether anything changed.
func (m *Machine) MarkViewed(c *models.Contract, partyID string, actor models.Actor) bool {
	if c.Status != models.StatusSent {
		return false
	}
	party, ok := c.Party(partyID)
	if !ok || party.Role == models.RoleProvider {
		return false
	}
	c.Status = models.StatusViewed
	c.AppendAudit(models.NewAuditEvent(models.EventViewed, actor, m.now(), map[string]interface{}{
		"party_id": partyID,
	}))
	m.touch(c)
	return true
}

func signerParty(c *models.Contract, partyID string) (*models.Party, error) {
	party, ok := c.Party(partyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPartyNotFound, partyID)
	}
	if party.Role == models.RoleProvider {
		return nil, fmt.Errorf("%w: provider cannot act as a signer here", domain.ErrForbidden)
	}
	return party, nil
}

// ClientSign records a signer party's responses. The contract becomes Completed
// once every non-provider party has filled its required fields, otherwise
// PartiallySigned. It reports whether the contract completed.
func (m *Machine) ClientSign(c *models.Contract, partyID string, values map[string]string, actor models.Actor) (bool, error) {
	if _, err := signerParty(c, partyID); err != nil {
		return false, err
	}
	if err := requireAction(c, models.ActionClientSign); err != nil {
		return false, err
	}
	if c.IsExpiredAt(m.now()) {
		return false, fmt.Errorf("%w: contract expired", models.ErrInvalidTransition)
	}

	responses := partyResponses(c, partyID, values)
	if !mergedComplete(c, partyID, responses) {
		return false, models.ErrIncomplete
	}

	c.MergeFieldValues(responses)
	c.AppendAudit(models.NewAuditEvent(models.EventSigned, actor, m.now(), map[string]interface{}{
		"party_id": partyID,
	}))

	completed := true
	for _, p := range c.Parties {
		if p.Role == models.RoleProvider {
			continue
		}
		if !c.PartyComplete(p.ID) {
			completed = false
			break
		}
	}
	if completed {
		c.Status = models.StatusCompleted
	} else {
		c.Status = models.StatusPartiallySigned
	}
	m.touch(c)
	return completed, nil
}

// RequestChanges records a revision request from a signer party
func (m *Machine) RequestChanges(c *models.Contract, partyID, message string, actor models.Actor) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return &domain.ValidationError{Message: "message is required to request changes"}
	}
	if _, err := signerParty(c, partyID); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionRequestChanges); err != nil {
		return err
	}

	now := m.now()
	c.Status = models.StatusRevisionRequested
	c.RevisionRequests = append(c.RevisionRequests, models.RevisionRequest{
		PartyID:   partyID,
		Message:   message,
		CreatedAt: now,
	})
	c.AppendAudit(models.NewAuditEvent(models.EventRevisionRequested, actor, now, map[string]interface{}{
		"party_id": partyID,
		"message":  message,
	}))
	m.touch(c)
	return nil
}

// Decline records a signer party's refusal
func (m *Machine) Decline(c *models.Contract, partyID, reason string, actor models.Actor) error {
	if _, err := signerParty(c, partyID); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionDecline); err != nil {
		return err
	}

	c.Status = models.StatusDeclined
	metadata := map[string]interface{}{"party_id": partyID}
	if reason = strings.TrimSpace(reason); reason != "" {
		metadata["reason"] = reason
	}
	c.AppendAudit(models.NewAuditEvent(models.EventDeclined, actor, m.now(), metadata))
	m.touch(c)
	return nil
}

// Expire closes an outstanding contract that can no longer be signed
func (m *Machine) Expire(c *models.Contract, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionExpire); err != nil {
		return err
	}
	c.Status = models.StatusExpired
	c.AppendAudit(models.NewAuditEvent(models.EventExpired, actor, m.now(), nil))
	m.touch(c)
	return nil
}

// Archive retires a contract from any state except archived
func (m *Machine) Archive(c *models.Contract, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionArchive); err != nil {
		return err
	}
	previous := c.Status
	c.Status = models.StatusArchived
	c.AppendAudit(models.NewAuditEvent(models.EventArchived, actor, m.now(), map[string]interface{}{
		"previous_status": string(previous),
	}))
	m.touch(c)
	return nil
}

// Unarchive returns an archived contract to target, or to draft when target is empty
func (m *Machine) Unarchive(c *models.Contract, target models.Status, actor models.Actor) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	if err := requireAction(c, models.ActionUnarchive); err != nil {
		return err
	}
	if target == "" {
		target = models.StatusDraft
	}
	if !target.IsValid() || target == models.StatusArchived {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid unarchive target status %q", target)}
	}

	c.Status = target
	c.AppendAudit(models.NewAuditEvent(models.EventUnarchived, actor, m.now(), map[string]interface{}{
		"target_status": string(target),
	}))
	m.touch(c)
	return nil
}

// UpdateVariables replaces the variable set of an editable contract. It reports
// the names of the variables that changed.
func (m *Machine) UpdateVariables(c *models.Contract, vars models.Variables, actor models.Actor) ([]string, error) {
	if err := requireProvider(actor); err != nil {
		return nil, err
	}
	if !models.CanPerform(c.Status, models.ActionEditVariables) {
		return nil, models.ErrNotEditable
	}

	changed := ChangedFields(c.Variables, vars)
	if len(changed) == 0 {
		return changed, nil
	}
	c.Variables = vars.Clone()
	c.AppendAudit(models.NewAuditEvent(models.EventVariablesUpdated, actor, m.now(), map[string]interface{}{
		"changed_fields": changed,
	}))
	m.touch(c)
	return changed, nil
}

// Duplicate derives a brand-new draft from c. Party and field IDs are re-minted
// and field ownership is remapped to the new party IDs.
func (m *Machine) Duplicate(c *models.Contract, actor models.Actor) (*models.Contract, error) {
	if err := requireProvider(actor); err != nil {
		return nil, err
	}
	now := m.now()

	partyIDs := make(map[string]string, len(c.Parties))
	parties := make([]models.Party, len(c.Parties))
	for i, p := range c.Parties {
		newID := uuid.NewString()
		partyIDs[p.ID] = newID
		p.ID = newID
		parties[i] = p
	}

	fields := make([]models.SignatureField, 0, len(c.SignatureFields))
	for _, f := range c.SignatureFields {
		owner, ok := partyIDs[f.PartyID]
		if !ok {
			continue
		}
		f.ID = uuid.NewString()
		f.PartyID = owner
		fields = append(fields, f)
	}

	dup := &models.Contract{
		ID:               uuid.NewString(),
		OrganizationID:   c.OrganizationID,
		ClientID:         c.ClientID,
		Title:            c.Title + " (copy)",
		Body:             c.Body,
		Status:           models.StatusDraft,
		Version:          1,
		Parties:          parties,
		Variables:        c.Variables.Clone(),
		SignatureFields:  fields,
		FieldValues:      map[string]string{},
		History:          []models.ContractVersion{},
		RevisionRequests: []models.RevisionRequest{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	dup.AuditTrail = []models.AuditEvent{
		models.NewAuditEvent(models.EventCreated, actor, now, map[string]interface{}{
			"source_contract_id": c.ID,
		}),
	}
	return dup, nil
}
