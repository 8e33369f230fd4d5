package contract

import (
	"regexp"
	"strings"

	models "studioflow/internal/domain/models/contract"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)
	markerPattern      = regexp.MustCompile(`\[\[\s*([a-z]+)\s*:\s*([a-z]+)\s*\]\]`)
)

// Render substitutes {{name}} placeholders with variable values.
// Placeholders without a matching variable are left as written.
func Render(body string, vars models.Variables) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		v, ok := vars[name]
		if !ok {
			return token
		}
		return Stringify(v)
	})
}

// ExtractMarkers finds [[kind:role]] field markers in document order. The role
// resolves to the first party holding it; markers of an unknown kind are skipped.
func ExtractMarkers(rendered string, parties []models.Party) []models.Marker {
	byRole := make(map[models.PartyRole]string, len(parties))
	for _, p := range parties {
		if _, seen := byRole[p.Role]; !seen {
			byRole[p.Role] = p.ID
		}
	}

	markers := []models.Marker{}
	for _, match := range markerPattern.FindAllStringSubmatch(rendered, -1) {
		kind, err := models.ParseFieldKind(strings.ToLower(match[1]))
		if err != nil {
			continue
		}
		markers = append(markers, models.Marker{
			Index:   len(markers),
			Kind:    kind,
			PartyID: byRole[models.PartyRole(match[2])],
			Token:   match[0],
		})
	}
	return markers
}
