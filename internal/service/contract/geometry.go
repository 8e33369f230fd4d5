package contract

import (
	"time"

	"github.com/google/uuid"

	models "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
)

// Field sizing relative to the document's reference line height
const (
	signatureHeightRatio = 2.2
	defaultHeightRatio   = 1.1
	signatureWidthRatio  = 12.0
	defaultWidthRatio    = 7.0
)

// CanvasSettleDelay is how long a caller should wait before retrying placement
// when the document had not finished rendering
const CanvasSettleDelay = 300 * time.Millisecond

// fieldSize returns the pixel width and height of a field of the given kind
func fieldSize(kind models.FieldKind, lineHeight float64) (width, height float64) {
	switch kind {
	case models.FieldSignature:
		return lineHeight * signatureWidthRatio, lineHeight * signatureHeightRatio
	case models.FieldInitial, models.FieldDate, models.FieldCheckbox, models.FieldText:
		return lineHeight * defaultWidthRatio, lineHeight * defaultHeightRatio
	}
	return lineHeight * defaultWidthRatio, lineHeight * defaultHeightRatio
}

// PlaceFields converts inline markers into positioned fields with fresh IDs.
// Markers without a party or a recognised kind are skipped. When the canvas has
// no size yet nothing is placed and ErrCanvasNotReady is returned.
func PlaceFields(layout *contractSvc.PrepareRequest) ([]models.SignatureField, error) {
	if layout == nil || layout.CanvasWidth <= 0 || layout.CanvasHeight <= 0 {
		return nil, models.ErrCanvasNotReady
	}

	fields := make([]models.SignatureField, 0, len(layout.Markers))
	for _, m := range layout.Markers {
		if m.PartyID == "" || m.Kind == "" {
			continue
		}
		kind, err := models.ParseFieldKind(m.Kind)
		if err != nil {
			continue
		}

		width, height := fieldSize(kind, layout.LineHeight)
		y := m.LineTop + layout.LineHeight/2 - height/2
		x := m.Left

		fields = append(fields, models.SignatureField{
			ID:       uuid.NewString(),
			PartyID:  m.PartyID,
			Kind:     kind,
			Required: !m.Optional,
			Page:     m.Page,
			X:        percentOf(x, layout.CanvasWidth),
			Y:        percentOf(y, layout.CanvasHeight),
			Width:    percentOf(width, layout.CanvasWidth),
			Height:   percentOf(height, layout.CanvasHeight),
		})
	}

	return fields, nil
}

func percentOf(v, total float64) float64 {
	p := v / total * 100
	if p < 0 {
		return 0
	}
	return p
}
