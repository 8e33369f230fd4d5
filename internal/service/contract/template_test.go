package contract

import (
	"testing"

	models "studioflow/internal/domain/models/contract"
)

func TestRender(t *testing.T) {
	vars := models.Variables{
		"client_name": "Jordan",
		"hours":       float64(8),
		"extras":      []interface{}{"album", "prints"},
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "substitutes", body: "Hello {{client_name}}", want: "Hello Jordan"},
		{name: "tolerates spacing", body: "{{ hours }} hours", want: "8 hours"},
		{name: "lists join", body: "Includes {{extras}}", want: "Includes album,prints"},
		{name: "unknown placeholder stays", body: "Due {{deposit_date}}", want: "Due {{deposit_date}}"},
		{name: "no placeholders", body: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.body, vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractMarkers(t *testing.T) {
	parties := newDraft().Parties
	body := "Sign [[signature:provider]] then [[signature:client]] on [[date:client]] [[stamp:client]] [[initial:nobody]]"

	markers := ExtractMarkers(body, parties)
	if len(markers) != 4 {
		t.Fatalf("markers = %d, want 4 (unknown kind skipped)", len(markers))
	}

	want := []struct {
		kind    models.FieldKind
		partyID string
	}{
		{models.FieldSignature, "party-provider"},
		{models.FieldSignature, "party-client"},
		{models.FieldDate, "party-client"},
		{models.FieldInitial, ""},
	}
	for i, w := range want {
		m := markers[i]
		if m.Index != i || m.Kind != w.kind || m.PartyID != w.partyID {
			t.Errorf("marker %d = %+v, want kind=%s party=%q", i, m, w.kind, w.partyID)
		}
	}
}
