package contract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studioflow/internal/domain"
	models "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/repositories"
	contractSvc "studioflow/internal/domain/services/contract"
)

// Session collects one party's responses before they are written back.
// It holds a copy of the party's fields and never touches the stored contract.
// A session is driven by one signer at a time; the registry serializes access.
type Session struct {
	contractID string
	partyID    string
	fields     []models.SignatureField
	values     map[string]string
	active     string

	cache  repositories.SignatureCache
	now    func() time.Time
	logger *slog.Logger
}

// NewSession starts a session for partyID, pre-filled with responses already on the contract
func NewSession(c *models.Contract, partyID string, cache repositories.SignatureCache, now func() time.Time, logger *slog.Logger) (*Session, error) {
	if _, ok := c.Party(partyID); !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPartyNotFound, partyID)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	fields := c.FieldsForParty(partyID)
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if v := c.FieldValues[f.ID]; v != "" {
			values[f.ID] = v
		}
	}

	return &Session{
		contractID: c.ID,
		partyID:    partyID,
		fields:     fields,
		values:     values,
		cache:      cache,
		now:        now,
		logger:     logger,
	}, nil
}

func (s *Session) field(id string) (models.SignatureField, error) {
	for _, f := range s.fields {
		if f.ID == id {
			return f, nil
		}
	}
	return models.SignatureField{}, fmt.Errorf("%w: %s", models.ErrFieldNotFound, id)
}

func (s *Session) fieldOfKind(id string, kinds ...models.FieldKind) (models.SignatureField, error) {
	f, err := s.field(id)
	if err != nil {
		return f, err
	}
	for _, k := range kinds {
		if f.Kind == k {
			return f, nil
		}
	}
	return f, &domain.ValidationError{Message: fmt.Sprintf("field %s is a %s field", id, f.Kind)}
}

// Open activates a field. Image fields offer the saved signature when the
// device has one, otherwise go straight to drawing.
func (s *Session) Open(ctx context.Context, fieldID string) (*contractSvc.OpenFieldResult, error) {
	f, err := s.field(fieldID)
	if err != nil {
		return nil, err
	}
	result := &contractSvc.OpenFieldResult{FieldID: f.ID, Prompt: contractSvc.PromptNone}
	if !f.Kind.CapturesImage() {
		return result, nil
	}

	s.active = f.ID
	result.Prompt = contractSvc.PromptDraw
	if s.cache == nil {
		return result, nil
	}
	saved, ok, err := s.cache.SavedSignature(ctx)
	if err != nil {
		s.logger.Warn("signature cache read failed", "contract_id", s.contractID, "error", err)
		return result, nil
	}
	if ok && saved != "" {
		result.Prompt = contractSvc.PromptChoose
		result.SavedSignature = saved
	}
	return result, nil
}

// Apply stores a drawn or reused image. Every date field of the same party is
// filled with today's date, and the active field is closed.
func (s *Session) Apply(ctx context.Context, fieldID, payload string) error {
	f, err := s.fieldOfKind(fieldID, models.FieldSignature, models.FieldInitial)
	if err != nil {
		return err
	}
	if strings.TrimSpace(payload) == "" {
		return &domain.ValidationError{Message: "signature image is required"}
	}

	s.values[f.ID] = payload
	today := s.now().Format(models.DateLayout)
	for _, other := range s.fields {
		if other.Kind == models.FieldDate {
			s.values[other.ID] = today
		}
	}
	s.active = ""

	if s.cache != nil {
		if err := s.cache.SaveSignature(ctx, payload); err != nil {
			s.logger.Warn("signature cache write failed", "contract_id", s.contractID, "error", err)
		}
	}
	return nil
}

// SetDate writes today's date into a date field
func (s *Session) SetDate(fieldID string) error {
	f, err := s.fieldOfKind(fieldID, models.FieldDate)
	if err != nil {
		return err
	}
	s.values[f.ID] = s.now().Format(models.DateLayout)
	return nil
}

// SetCheckbox ticks or clears a checkbox; a cleared box has no response at all
func (s *Session) SetCheckbox(fieldID string, checked bool) error {
	f, err := s.fieldOfKind(fieldID, models.FieldCheckbox)
	if err != nil {
		return err
	}
	if checked {
		s.values[f.ID] = models.CheckedValue
	} else {
		delete(s.values, f.ID)
	}
	return nil
}

// SetText writes free text; blank text removes the response
func (s *Session) SetText(fieldID, text string) error {
	f, err := s.fieldOfKind(fieldID, models.FieldText)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		delete(s.values, f.ID)
		return nil
	}
	s.values[f.ID] = text
	return nil
}

// Close dismisses the capture dialog without writing anything
func (s *Session) Close() {
	s.active = ""
}

// Progress returns filled and required counts for the party
func (s *Session) Progress() (filled, required int) {
	return models.CompletionCount(s.fields, s.values)
}

// CanFinish reports whether every required field has a response
func (s *Session) CanFinish() bool {
	filled, required := s.Progress()
	return filled == required
}

// Finish hands back the collected responses, or ErrIncomplete while gated.
// Fields of the party left without a response map to "" so that a merge
// clears whatever was stored for them before.
func (s *Session) Finish() (map[string]string, error) {
	if !s.CanFinish() {
		return nil, models.ErrIncomplete
	}
	out := s.Responses()
	for _, f := range s.fields {
		if _, ok := out[f.ID]; !ok {
			out[f.ID] = ""
		}
	}
	return out, nil
}

// Responses returns a copy of the collected responses
func (s *Session) Responses() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// State renders the session for API callers
func (s *Session) State() *contractSvc.SessionState {
	filled, required := s.Progress()
	fields := make([]models.SignatureField, len(s.fields))
	copy(fields, s.fields)
	return &contractSvc.SessionState{
		ContractID:    s.contractID,
		PartyID:       s.partyID,
		Fields:        fields,
		Values:        s.Responses(),
		ActiveFieldID: s.active,
		Completed:     filled,
		Required:      required,
		CanFinish:     filled == required,
	}
}
