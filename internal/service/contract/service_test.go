package contract

import (
	"context"
	"errors"
	"testing"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

func createRequest() *contractSvc.CreateContractRequest {
	return &contractSvc.CreateContractRequest{
		OrganizationID: "org-1",
		ClientID:       "client-1",
		Title:          "Portrait Session",
		Body:           "Session for {{client_name}}. [[signature:provider]] [[signature:client]] [[date:client]]",
		Parties: []contractSvc.PartyInput{
			{Role: contractModels.RoleProvider, Name: "Avery Studio", Email: "avery@example.com"},
			{Role: contractModels.RoleClient, Name: "Jordan", Email: "jordan@example.com"},
		},
		Variables: contractModels.Variables{"client_name": "Jordan"},
	}
}

func TestCreateContractValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *contractSvc.CreateContractRequest)
	}{
		{name: "missing title", mutate: func(r *contractSvc.CreateContractRequest) { r.Title = "  " }},
		{name: "no parties", mutate: func(r *contractSvc.CreateContractRequest) { r.Parties = nil }},
		{name: "two providers", mutate: func(r *contractSvc.CreateContractRequest) {
			r.Parties[1].Role = contractModels.RoleProvider
		}},
		{name: "no provider", mutate: func(r *contractSvc.CreateContractRequest) {
			r.Parties[0].Role = contractModels.RoleWitness
		}},
		{name: "bad email", mutate: func(r *contractSvc.CreateContractRequest) { r.Parties[1].Email = "nope" }},
		{name: "unknown role", mutate: func(r *contractSvc.CreateContractRequest) { r.Parties[1].Role = "notary" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			svc := NewContractService(deps.Dependencies)
			req := createRequest()
			tt.mutate(req)

			_, err := svc.CreateContract(context.Background(), req, providerActor)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(deps.contracts.docs) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestCreateContract(t *testing.T) {
	deps := newTestDeps()
	svc := NewContractService(deps.Dependencies)

	c, err := svc.CreateContract(context.Background(), createRequest(), providerActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != contractModels.StatusDraft || c.Version != 1 {
		t.Errorf("got status=%s version=%d", c.Status, c.Version)
	}
	if len(c.History) != 1 || c.History[0].Version != 1 {
		t.Errorf("history = %+v, want the first version snapshot", c.History)
	}
	if len(c.AuditTrail) != 1 || c.AuditTrail[0].EventType != contractModels.EventCreated {
		t.Errorf("audit = %v", eventTypes(c))
	}
	for _, p := range c.Parties {
		if p.ID == "" {
			t.Error("parties need ids")
		}
	}

	req := createRequest()
	req.ClientID = "client-404"
	if _, err := svc.CreateContract(context.Background(), req, providerActor); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown client: got %v", err)
	}
}

// signingFlow walks a contract from creation to completion through the services
func TestSigningFlow(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	contracts := NewContractService(deps.Dependencies)
	signing := NewSigningService(deps.Dependencies, nil)

	c, err := contracts.CreateContract(ctx, createRequest(), providerActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	provider, _ := c.ProviderParty()
	var clientPartyID string
	for _, p := range c.Parties {
		if p.Role == contractModels.RoleClient {
			clientPartyID = p.ID
		}
	}

	rendered, err := contracts.RenderContract(ctx, c.ID, "org-1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(rendered.Markers) != 3 {
		t.Fatalf("markers = %d, want 3", len(rendered.Markers))
	}

	layout := &contractSvc.PrepareRequest{LineHeight: 20}
	for i, m := range rendered.Markers {
		layout.Markers = append(layout.Markers, contractSvc.MarkerInput{
			PartyID: m.PartyID, Kind: string(m.Kind), Left: float64(40 * i), LineTop: 300,
		})
	}

	// canvas not rendered yet
	if _, err := contracts.PrepareFields(ctx, c.ID, "org-1", layout, providerActor); !errors.Is(err, contractModels.ErrCanvasNotReady) {
		t.Fatalf("expected ErrCanvasNotReady, got %v", err)
	}
	if deps.contracts.puts != 0 {
		t.Fatal("a not-ready canvas must not write")
	}

	layout.CanvasWidth, layout.CanvasHeight = 800, 1200
	c, err = contracts.PrepareFields(ctx, c.ID, "org-1", layout, providerActor)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(c.SignatureFields) != 3 {
		t.Fatalf("fields = %d, want 3", len(c.SignatureFields))
	}

	// provider signs and sends
	providerKey := contractSvc.SessionKey{ContractID: c.ID, PartyID: provider.ID, DeviceID: "studio-laptop"}
	state, err := signing.StartSession(ctx, providerKey, "org-1")
	if err != nil {
		t.Fatalf("start provider session: %v", err)
	}
	if state.Required != 1 || state.CanFinish {
		t.Fatalf("provider state = %+v", state)
	}
	if _, err := signing.FinishSession(ctx, providerKey, providerActor); !errors.Is(err, contractModels.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	for _, f := range state.Fields {
		if _, err := signing.SetField(ctx, providerKey, f.ID, &contractSvc.FieldInput{Payload: "data:image/png;base64,P"}); err != nil {
			t.Fatalf("set provider field: %v", err)
		}
	}
	c, err = signing.FinishSession(ctx, providerKey, providerActor)
	if err != nil {
		t.Fatalf("finish provider: %v", err)
	}
	if c.Status != contractModels.StatusSent {
		t.Fatalf("status = %s, want sent", c.Status)
	}

	// client opens the link
	signer := contractModels.Actor{Role: contractModels.RoleClient, PartyID: clientPartyID}
	if _, err := contracts.OpenForSigner(ctx, c.ID, clientPartyID, signer); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got, _ := contracts.GetContract(ctx, c.ID, "org-1"); got.Status != contractModels.StatusViewed {
		t.Fatalf("status = %s, want viewed", got.Status)
	}

	clientKey := contractSvc.SessionKey{ContractID: c.ID, PartyID: clientPartyID, DeviceID: "phone"}
	state, err = signing.StartSession(ctx, clientKey, "")
	if err != nil {
		t.Fatalf("start client session: %v", err)
	}
	for _, f := range state.Fields {
		if f.Kind == contractModels.FieldSignature {
			state, err = signing.SetField(ctx, clientKey, f.ID, &contractSvc.FieldInput{Payload: "data:image/png;base64,C"})
			if err != nil {
				t.Fatalf("set client signature: %v", err)
			}
		}
	}
	if !state.CanFinish || state.Completed != 2 {
		t.Fatalf("client state = %+v, want date auto-filled", state)
	}

	c, err = signing.FinishSession(ctx, clientKey, signer)
	if err != nil {
		t.Fatalf("finish client: %v", err)
	}
	if c.Status != contractModels.StatusCompleted {
		t.Errorf("status = %s, want completed", c.Status)
	}

	client, _ := deps.clients.Get(ctx, "client-1", "org-1")
	if client.Status != models.ClientHot {
		t.Errorf("client status = %s, want hot", client.Status)
	}
	if len(deps.notifications.items) != 1 || deps.notifications.items[0].Type != models.NotificationContractSigned {
		t.Errorf("notifications = %+v", deps.notifications.items)
	}
	if _, err := signing.GetSession(ctx, clientKey); !errors.Is(err, domain.ErrNotFound) {
		t.Error("finished sessions are discarded")
	}
}

func TestRequestChangesNotifiesProvider(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	svc := NewContractService(deps.Dependencies)

	c := withFields(newDraft())
	c.Status = contractModels.StatusSent
	if err := deps.contracts.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RequestChanges(ctx, c.ID, "party-client", &contractSvc.RequestChangesRequest{Message: ""}, clientActor); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty message: got %v", err)
	}

	got, err := svc.RequestChanges(ctx, c.ID, "party-client", &contractSvc.RequestChangesRequest{Message: "Add a second shooter"}, clientActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != contractModels.StatusRevisionRequested {
		t.Errorf("status = %s", got.Status)
	}
	if len(deps.notifications.items) != 1 {
		t.Fatalf("notifications = %d, want 1", len(deps.notifications.items))
	}
	n := deps.notifications.items[0]
	if n.Type != models.NotificationRevisionRequested || n.IsRead || n.RelatedContractID == nil || *n.RelatedContractID != c.ID {
		t.Errorf("notification = %+v", n)
	}
}

func TestStaleWriteIsRejected(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	st := newStore(deps.Dependencies)

	c := newDraft()
	if err := deps.contracts.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	first, _ := deps.contracts.GetByID(ctx, c.ID)
	second, _ := deps.contracts.GetByID(ctx, c.ID)

	first.Title = "First writer"
	if err := st.save(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second.Title = "Second writer"
	err := st.save(ctx, second)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if second.Revision != 1 {
		t.Errorf("failed save must keep the loaded revision, got %d", second.Revision)
	}

	stored, _ := deps.contracts.GetByID(ctx, c.ID)
	if stored.Title != "First writer" {
		t.Errorf("title = %q", stored.Title)
	}
}

func TestArchiveThroughService(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	svc := NewContractService(deps.Dependencies)

	c := newDraft()
	c.Status = contractModels.StatusCompleted
	_ = deps.contracts.Create(ctx, c)

	if _, err := svc.Archive(ctx, c.ID, "org-2", providerActor); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other organizations must not see the contract, got %v", err)
	}
	archived, err := svc.Archive(ctx, c.ID, "org-1", providerActor)
	if err != nil || archived.Status != contractModels.StatusArchived {
		t.Fatalf("archive = (%v, %v)", archived, err)
	}
	restored, err := svc.Unarchive(ctx, c.ID, "org-1", &contractSvc.UnarchiveRequest{}, providerActor)
	if err != nil || restored.Status != contractModels.StatusDraft {
		t.Fatalf("unarchive = (%v, %v)", restored, err)
	}
}

func TestVersionServiceRestore(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	contracts := NewContractService(deps.Dependencies)
	versions := NewVersionService(deps.Dependencies)

	c, err := contracts.CreateContract(ctx, createRequest(), providerActor)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := contracts.UpdateVariables(ctx, c.ID, "org-1", &contractSvc.UpdateVariablesRequest{
		Variables: contractModels.Variables{"client_name": "Jordan Lee"},
	}, providerActor); err != nil {
		t.Fatalf("update: %v", err)
	}

	diffs, err := versions.CompareVersions(ctx, c.ID, "org-1", 1, 1)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(diffs) != 0 {
		t.Errorf("live version 1 against itself: %+v", diffs)
	}

	restored, err := versions.RestoreVersion(ctx, c.ID, "org-1", 1, providerActor)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Version != 3 || restored.Variables["client_name"] != "Jordan" {
		t.Errorf("restored = version %d vars %+v", restored.Version, restored.Variables)
	}

	list, err := versions.ListVersions(ctx, c.ID, "org-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || !list[2].IsCurrent || list[2].Version != 3 {
		t.Errorf("versions = %+v", list)
	}
	if list[0].Version != 1 || list[1].Version != 2 {
		t.Errorf("history versions = %d, %d; want 1, 2", list[0].Version, list[1].Version)
	}

	// the edited state is still reachable by its own number
	back, err := versions.RestoreVersion(ctx, c.ID, "org-1", 2, providerActor)
	if err != nil {
		t.Fatalf("restore edited: %v", err)
	}
	if back.Variables["client_name"] != "Jordan Lee" {
		t.Errorf("restored edited = %+v", back.Variables)
	}

	if _, err := versions.RestoreVersion(ctx, c.ID, "org-1", 42, providerActor); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing version: got %v", err)
	}
}

func TestSigningSessionsArePerDevice(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	signing := NewSigningService(deps.Dependencies, nil)

	c := withFields(newDraft())
	c.Status = contractModels.StatusSent
	if err := deps.contracts.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	tabA := contractSvc.SessionKey{ContractID: c.ID, PartyID: "party-client", DeviceID: "tab-a"}
	tabB := contractSvc.SessionKey{ContractID: c.ID, PartyID: "party-client", DeviceID: "tab-b"}

	if _, err := signing.StartSession(ctx, tabA, "org-1"); err != nil {
		t.Fatalf("start tab a: %v", err)
	}
	state, err := signing.SetField(ctx, tabA, "f-client-sig", &contractSvc.FieldInput{Payload: "data:image/png;base64,A"})
	if err != nil {
		t.Fatalf("sign tab a: %v", err)
	}
	if state.Completed != 2 || state.Required != 2 {
		t.Fatalf("tab a progress = %d/%d, want 2/2", state.Completed, state.Required)
	}

	other, err := signing.StartSession(ctx, tabB, "org-1")
	if err != nil {
		t.Fatalf("start tab b: %v", err)
	}
	if other.Completed != 0 {
		t.Errorf("tab b progress = %d, want 0", other.Completed)
	}

	state, err = signing.GetSession(ctx, tabA)
	if err != nil {
		t.Fatalf("tab a session lost: %v", err)
	}
	if state.Completed != 2 || !state.CanFinish {
		t.Errorf("tab a progress = %d/%d after tab b opened, want 2/2", state.Completed, state.Required)
	}

	if err := signing.CancelSession(ctx, tabB); err != nil {
		t.Fatal(err)
	}
	if _, err := signing.GetSession(ctx, tabA); err != nil {
		t.Errorf("cancelling tab b closed tab a: %v", err)
	}
}
