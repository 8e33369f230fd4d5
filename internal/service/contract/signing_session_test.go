package contract

import (
	"context"
	"errors"
	"testing"

	models "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

const today = "03/09/2024"

// clientOnlyContract has a client signature and date and nothing for the provider
func clientOnlyContract() *models.Contract {
	c := newDraft()
	c.SignatureFields = []models.SignatureField{
		{ID: "f-sig", PartyID: "party-client", Kind: models.FieldSignature, Required: true},
		{ID: "f-date", PartyID: "party-client", Kind: models.FieldDate, Required: true},
	}
	return c
}

func newTestSession(t *testing.T, c *models.Contract, partyID string) (*Session, *MemorySignatureCaches) {
	t.Helper()
	caches := NewMemorySignatureCaches()
	s, err := NewSession(c, partyID, caches.ForDevice("device-1"), fixedClock, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, caches
}

func TestSigningScenarioClientSignatureAndDate(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(fixedClock)
	c := clientOnlyContract()

	// provider has no fields, so its finish is immediately available
	provider, _ := newTestSession(t, c, "party-provider")
	if !provider.CanFinish() {
		t.Fatal("a party with no required fields is complete")
	}
	responses, err := provider.Finish()
	if err != nil {
		t.Fatalf("provider finish: %v", err)
	}
	if err := m.ProviderSign(c, responses, providerActor); err != nil {
		t.Fatalf("provider sign: %v", err)
	}

	client, _ := newTestSession(t, c, "party-client")
	if filled, required := client.Progress(); filled != 0 || required != 2 {
		t.Fatalf("progress = %d/%d, want 0/2", filled, required)
	}
	if _, err := client.Finish(); !errors.Is(err, models.ErrIncomplete) {
		t.Fatalf("finish must be gated, got %v", err)
	}

	if err := client.Apply(ctx, "f-sig", "data:image/png;base64,SIG"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if filled, required := client.Progress(); filled != 2 || required != 2 {
		t.Fatalf("progress after auto-fill = %d/%d, want 2/2", filled, required)
	}
	responses, err = client.Finish()
	if err != nil {
		t.Fatalf("client finish: %v", err)
	}
	if responses["f-date"] != today {
		t.Errorf("date = %q, want %q", responses["f-date"], today)
	}

	done, err := m.ClientSign(c, "party-client", responses, clientActor)
	if err != nil || !done {
		t.Fatalf("client sign = (%v, %v), want completion", done, err)
	}
	if c.FieldValues["f-sig"] == "" || c.FieldValues["f-date"] != today {
		t.Errorf("responses not merged: %+v", c.FieldValues)
	}
}

func TestApplyOnlyFillsOwnDates(t *testing.T) {
	c := newDraft()
	c.SignatureFields = []models.SignatureField{
		{ID: "f-client-initial", PartyID: "party-client", Kind: models.FieldInitial, Required: true},
		{ID: "f-client-date", PartyID: "party-client", Kind: models.FieldDate, Required: true},
		{ID: "f-client-date-2", PartyID: "party-client", Kind: models.FieldDate, Required: false},
		{ID: "f-witness-date", PartyID: "party-witness", Kind: models.FieldDate, Required: true},
	}

	s, _ := newTestSession(t, c, "party-client")
	if err := s.Apply(context.Background(), "f-client-initial", "data:image/png;base64,IN"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	values := s.Responses()
	for _, id := range []string{"f-client-date", "f-client-date-2"} {
		if values[id] != today {
			t.Errorf("%s = %q, want %q", id, values[id], today)
		}
	}
	if _, ok := values["f-witness-date"]; ok {
		t.Error("another party's date field was filled")
	}
}

func TestFinishGating(t *testing.T) {
	c := newDraft()
	c.SignatureFields = []models.SignatureField{
		{ID: "f-sig", PartyID: "party-client", Kind: models.FieldSignature, Required: true},
		{ID: "f-terms", PartyID: "party-client", Kind: models.FieldCheckbox, Required: true},
		{ID: "f-notes", PartyID: "party-client", Kind: models.FieldText, Required: false},
	}

	tests := []struct {
		name      string
		act       func(s *Session) error
		canFinish bool
	}{
		{
			name:      "nothing filled",
			act:       func(s *Session) error { return nil },
			canFinish: false,
		},
		{
			name:      "optional text only",
			act:       func(s *Session) error { return s.SetText("f-notes", "see you there") },
			canFinish: false,
		},
		{
			name: "signature without checkbox",
			act: func(s *Session) error {
				return s.Apply(context.Background(), "f-sig", "img")
			},
			canFinish: false,
		},
		{
			name: "checkbox unticked again",
			act: func(s *Session) error {
				if err := s.Apply(context.Background(), "f-sig", "img"); err != nil {
					return err
				}
				if err := s.SetCheckbox("f-terms", true); err != nil {
					return err
				}
				return s.SetCheckbox("f-terms", false)
			},
			canFinish: false,
		},
		{
			name: "all required filled",
			act: func(s *Session) error {
				if err := s.Apply(context.Background(), "f-sig", "img"); err != nil {
					return err
				}
				return s.SetCheckbox("f-terms", true)
			},
			canFinish: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, c, "party-client")
			if err := tt.act(s); err != nil {
				t.Fatalf("act: %v", err)
			}
			if s.CanFinish() != tt.canFinish {
				t.Errorf("CanFinish() = %v, want %v", s.CanFinish(), tt.canFinish)
			}
			_, err := s.Finish()
			if tt.canFinish && err != nil {
				t.Errorf("unexpected finish error: %v", err)
			}
			if !tt.canFinish && !errors.Is(err, models.ErrIncomplete) {
				t.Errorf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}

func TestUncheckedCheckboxHasNoResponse(t *testing.T) {
	c := newDraft()
	c.SignatureFields = []models.SignatureField{
		{ID: "f-terms", PartyID: "party-client", Kind: models.FieldCheckbox, Required: false},
	}
	s, _ := newTestSession(t, c, "party-client")

	_ = s.SetCheckbox("f-terms", true)
	if s.Responses()["f-terms"] != models.CheckedValue {
		t.Fatalf("ticked value = %q", s.Responses()["f-terms"])
	}
	_ = s.SetCheckbox("f-terms", false)
	if _, ok := s.Responses()["f-terms"]; ok {
		t.Error("an unticked checkbox must delete its key")
	}
}

func TestOpenOffersSavedSignature(t *testing.T) {
	ctx := context.Background()
	c := clientOnlyContract()
	s, caches := newTestSession(t, c, "party-client")

	res, err := s.Open(ctx, "f-sig")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if res.Prompt != contractSvc.PromptDraw {
		t.Errorf("prompt = %s, want draw on a fresh device", res.Prompt)
	}
	if s.State().ActiveFieldID != "f-sig" {
		t.Error("opening an image field makes it active")
	}

	if err := s.Apply(ctx, "f-sig", "data:image/png;base64,SAVED"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.State().ActiveFieldID != "" {
		t.Error("apply closes the active field")
	}

	again, _ := NewSession(c, "party-client", caches.ForDevice("device-1"), fixedClock, nil)
	res, err = again.Open(ctx, "f-sig")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if res.Prompt != contractSvc.PromptChoose || res.SavedSignature != "data:image/png;base64,SAVED" {
		t.Errorf("result = %+v, want choose with the saved image", res)
	}

	other, _ := NewSession(c, "party-client", caches.ForDevice("device-2"), fixedClock, nil)
	if res, _ := other.Open(ctx, "f-sig"); res.Prompt != contractSvc.PromptDraw {
		t.Error("another device must not see the saved signature")
	}

	if res, _ := s.Open(ctx, "f-date"); res.Prompt != contractSvc.PromptNone {
		t.Errorf("date prompt = %s, want none", res.Prompt)
	}
}

func TestSessionRejectsForeignAndMismatchedFields(t *testing.T) {
	c := withFields(newDraft())
	s, _ := newTestSession(t, c, "party-client")

	if err := s.Apply(context.Background(), "f-provider-sig", "img"); !errors.Is(err, models.ErrFieldNotFound) {
		t.Errorf("foreign field: got %v", err)
	}
	if err := s.SetText("f-client-sig", "typed"); err == nil {
		t.Error("text write to a signature field must fail")
	}
	if err := s.Apply(context.Background(), "f-client-sig", "  "); err == nil {
		t.Error("blank signature must fail")
	}
}

func TestUntickedCheckboxClearsStoredResponse(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(fixedClock)
	c := newDraft()
	c.Status = models.StatusSent
	c.SignatureFields = []models.SignatureField{
		{ID: "f-sig", PartyID: "party-client", Kind: models.FieldSignature, Required: true},
		{ID: "f-terms", PartyID: "party-client", Kind: models.FieldCheckbox, Required: false},
	}
	c.FieldValues = map[string]string{"f-terms": models.CheckedValue}

	s, _ := newTestSession(t, c, "party-client")
	if s.Responses()["f-terms"] != models.CheckedValue {
		t.Fatal("session must start from the stored response")
	}
	if err := s.SetCheckbox("f-terms", false); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(ctx, "f-sig", "data:image/png;base64,SIG"); err != nil {
		t.Fatal(err)
	}

	responses, err := s.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if v, ok := responses["f-terms"]; !ok || v != "" {
		t.Errorf("finish must clear the unticked box, got %q (present %v)", v, ok)
	}

	if _, err := m.ClientSign(c, "party-client", responses, clientActor); err != nil {
		t.Fatalf("client sign: %v", err)
	}
	if _, ok := c.FieldValues["f-terms"]; ok {
		t.Errorf("stored checkbox survived the merge: %+v", c.FieldValues)
	}
	if c.FieldValues["f-sig"] == "" {
		t.Error("signature was not merged")
	}
}
