package guided

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"studioflow/internal/domain"
	contractModels "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
	guidedSvc "studioflow/internal/domain/services/guided"
)

type recordingContracts struct {
	contractSvc.ContractService
	created []*contractSvc.CreateContractRequest
	err     error
}

func (r *recordingContracts) CreateContract(_ context.Context, req *contractSvc.CreateContractRequest, _ contractModels.Actor) (*contractModels.Contract, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, req)
	return &contractModels.Contract{ID: "contract-1", OrganizationID: req.OrganizationID, Title: req.Title, Status: contractModels.StatusDraft}, nil
}

type fixedSuggester struct{ answers [3]string }

func (f fixedSuggester) SuggestClause(context.Context, string) string { return "" }
func (f fixedSuggester) SuggestAnswers(context.Context, string, string) [3]string {
	return f.answers
}

func newTestService(t *testing.T, contracts *recordingContracts) *Service {
	t.Helper()
	svc := NewService(testCatalog(t), contracts, fixedSuggester{answers: [3]string{"wedding", "portrait", ""}},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc
}

var provider = contractModels.Actor{Role: contractModels.RoleProvider, UserID: "user-1", Name: "Sam Studio", Email: "sam@example.com"}

func TestServiceCompleteCreatesDraft(t *testing.T) {
	ctx := context.Background()
	contracts := &recordingContracts{}
	svc := newTestService(t, contracts)

	view, err := svc.StartSession(ctx, "org-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.Complete(ctx, view.ID, "org-1", nil, provider); !errors.Is(err, guidedSvc.ErrNotInReview) {
		t.Fatalf("early complete err = %v", err)
	}

	for _, answer := range []string{"Ana", "portrait", "30", "no"} {
		if _, err := svc.Submit(ctx, view.ID, "org-1", answer); err != nil {
			t.Fatalf("submit %q: %v", answer, err)
		}
	}

	c, err := svc.Complete(ctx, view.ID, "org-1", &guidedSvc.CompleteRequest{ClientID: "client-9"}, provider)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if c.Status != contractModels.StatusDraft {
		t.Errorf("status = %s", c.Status)
	}

	req := contracts.created[0]
	if req.ClientID != "client-9" || req.Title != "Ana portrait" {
		t.Errorf("request = %+v", req)
	}
	if len(req.Parties) != 2 || req.Parties[0].Role != contractModels.RoleProvider || req.Parties[1].Name != "Ana" {
		t.Errorf("parties = %+v", req.Parties)
	}

	if _, err := svc.GetSession(ctx, view.ID, "org-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("completed session should be gone")
	}
}

func TestServiceCompleteFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &recordingContracts{err: errors.New("db down")})

	view, _ := svc.StartSession(ctx, "org-1")
	for _, answer := range []string{"Ana", "portrait", "30", "no"} {
		svc.Submit(ctx, view.ID, "org-1", answer)
	}

	if _, err := svc.Complete(ctx, view.ID, "org-1", nil, provider); err == nil {
		t.Fatal("expected create failure")
	}
	if _, err := svc.GetSession(ctx, view.ID, "org-1"); err != nil {
		t.Errorf("session lost after failed complete: %v", err)
	}
}

func TestServiceScopesSessionsByOrganization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &recordingContracts{})
	view, _ := svc.StartSession(ctx, "org-1")

	if _, err := svc.Submit(ctx, view.ID, "org-2", "Ana"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other org submit err = %v", err)
	}
	if err := svc.Abandon(ctx, view.ID, "org-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other org abandon err = %v", err)
	}
	if err := svc.Abandon(ctx, view.ID, "org-1"); err != nil {
		t.Errorf("abandon: %v", err)
	}
}

func TestServiceUndoRedoErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &recordingContracts{})
	view, _ := svc.StartSession(ctx, "org-1")

	if _, err := svc.Undo(ctx, view.ID, "org-1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("undo at start err = %v", err)
	}
	svc.Submit(ctx, view.ID, "org-1", "Ana")
	got, err := svc.Undo(ctx, view.ID, "org-1")
	if err != nil || got.Cursor != 0 || !got.CanRedo {
		t.Fatalf("undo = %+v, %v", got, err)
	}
	if got, err = svc.Redo(ctx, view.ID, "org-1"); err != nil || got.Cursor != 1 {
		t.Fatalf("redo = %+v, %v", got, err)
	}
	if _, err := svc.Redo(ctx, view.ID, "org-1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("redo at tip err = %v", err)
	}
}

func TestServiceSuggestionsFeedBlankAnswers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &recordingContracts{})
	view, _ := svc.StartSession(ctx, "org-1")
	svc.Submit(ctx, view.ID, "org-1", "Ana")

	got, err := svc.SuggestAnswers(ctx, view.ID, "org-1")
	if err != nil || got[0] != "wedding" {
		t.Fatalf("suggestions = %q, %v", got, err)
	}

	after, _ := svc.Submit(ctx, view.ID, "org-1", "")
	if after.Values["event_type"] != "wedding" {
		t.Errorf("blank answer should take the suggestion, values = %v", after.Values)
	}
}

func TestServicePruneIdle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &recordingContracts{})
	clock := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	old, _ := svc.StartSession(ctx, "org-1")
	clock = clock.Add(2 * time.Hour)
	fresh, _ := svc.StartSession(ctx, "org-1")

	if n := svc.PruneIdle(time.Hour); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, err := svc.GetSession(ctx, old.ID, "org-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("idle session survived")
	}
	if _, err := svc.GetSession(ctx, fresh.ID, "org-1"); err != nil {
		t.Errorf("fresh session pruned: %v", err)
	}
}
