package contract

import (
	"fmt"

	"studioflow/internal/domain"
)

// Contract workflow errors. Each wraps a domain sentinel so handlers can map
// them with errors.Is without knowing about contracts.
var (
	ErrInvalidTransition = fmt.Errorf("%w: action not allowed in current status", domain.ErrConflict)
	ErrNotEditable       = fmt.Errorf("%w: contract is no longer editable", domain.ErrConflict)
	ErrIncomplete        = fmt.Errorf("%w: required fields are not filled", domain.ErrValidation)
	ErrCanvasNotReady    = fmt.Errorf("%w: document canvas is not rendered yet", domain.ErrConflict)
	ErrProviderOnly      = fmt.Errorf("%w: only the provider may perform this action", domain.ErrForbidden)
	ErrVersionNotFound   = fmt.Errorf("version %w", domain.ErrNotFound)
	ErrFieldNotFound     = fmt.Errorf("field %w", domain.ErrNotFound)
	ErrPartyNotFound     = fmt.Errorf("party %w", domain.ErrNotFound)
)
