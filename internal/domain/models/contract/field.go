package contract

import "fmt"

// FieldKind is the closed set of signer inputs a placed field can capture
type FieldKind string

const (
	FieldSignature FieldKind = "signature"
	FieldInitial   FieldKind = "initial"
	FieldDate      FieldKind = "date"
	FieldCheckbox  FieldKind = "checkbox"
	FieldText      FieldKind = "text"
)

// CheckedValue is stored for a ticked checkbox; an unticked box has no entry
const CheckedValue = "checked"

// DateLayout is the format written into date fields
const DateLayout = "01/02/2006"

// ParseFieldKind converts a marker or request string into a FieldKind
func ParseFieldKind(v string) (FieldKind, error) {
	switch k := FieldKind(v); k {
	case FieldSignature, FieldInitial, FieldDate, FieldCheckbox, FieldText:
		return k, nil
	}
	return "", fmt.Errorf("unknown field kind %q", v)
}

// CapturesImage reports whether the response payload is a drawn image
func (k FieldKind) CapturesImage() bool {
	switch k {
	case FieldSignature, FieldInitial:
		return true
	case FieldDate, FieldCheckbox, FieldText:
		return false
	}
	return false
}

// SignatureField is a positioned input on the rendered document.
// Geometry is expressed as percentages (0-100) of the document canvas.
type SignatureField struct {
	ID       string    `json:"id"`
	PartyID  string    `json:"party_id"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Page     int       `json:"page"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
}

// CompletionCount returns how many required fields have a response and how many are required
func CompletionCount(fields []SignatureField, values map[string]string) (filled, required int) {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		required++
		if values[f.ID] != "" {
			filled++
		}
	}
	return filled, required
}

// Marker is an inline field placeholder found in a rendered contract body.
// The browser reports where each marker landed so fields can be placed over it.
type Marker struct {
	Index   int       `json:"index"`
	Kind    FieldKind `json:"kind"`
	PartyID string    `json:"party_id,omitempty"`
	Token   string    `json:"token"`
}
