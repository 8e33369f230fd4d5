package contract

import (
	"time"

	models "studioflow/internal/domain/models/contract"
)

var fixedNow = time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var (
	providerActor = models.Actor{Role: models.RoleProvider, UserID: "user-1", Name: "Avery Studio"}
	clientActor   = models.Actor{Role: models.RoleClient, PartyID: "party-client", Name: "Jordan Client"}
)

// newDraft builds a draft with a provider, a client and a witness party
func newDraft() *models.Contract {
	return &models.Contract{
		ID:             "contract-1",
		OrganizationID: "org-1",
		ClientID:       "client-1",
		Title:          "Wedding Photography Agreement",
		Body:           "Coverage for {{client_name}} on {{event_date}}.\n[[signature:provider]] [[signature:client]] [[date:client]]",
		Status:         models.StatusDraft,
		Version:        1,
		Parties: []models.Party{
			{ID: "party-provider", Role: models.RoleProvider, Name: "Avery Studio", Email: "avery@example.com"},
			{ID: "party-client", Role: models.RoleClient, Name: "Jordan Client", Email: "jordan@example.com"},
			{ID: "party-witness", Role: models.RoleWitness, Name: "Sam Witness", Email: "sam@example.com"},
		},
		Variables: models.Variables{
			"client_name": "Jordan",
			"event_date":  "2024-06-01",
			"hours":       float64(8),
		},
		SignatureFields:  []models.SignatureField{},
		FieldValues:      map[string]string{},
		History:          []models.ContractVersion{},
		RevisionRequests: []models.RevisionRequest{},
		CreatedAt:        fixedNow.Add(-time.Hour),
		UpdatedAt:        fixedNow.Add(-time.Hour),
	}
}

// withFields places a provider signature plus a client signature and date
func withFields(c *models.Contract) *models.Contract {
	c.SignatureFields = []models.SignatureField{
		{ID: "f-provider-sig", PartyID: "party-provider", Kind: models.FieldSignature, Required: true},
		{ID: "f-client-sig", PartyID: "party-client", Kind: models.FieldSignature, Required: true},
		{ID: "f-client-date", PartyID: "party-client", Kind: models.FieldDate, Required: true},
	}
	return c
}

func eventTypes(c *models.Contract) []models.AuditEventType {
	out := make([]models.AuditEventType, len(c.AuditTrail))
	for i, e := range c.AuditTrail {
		out[i] = e.EventType
	}
	return out
}
