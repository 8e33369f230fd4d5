package contract

import "fmt"

// Status is the contract lifecycle state
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSent              Status = "sent"
	StatusViewed            Status = "viewed"
	StatusPartiallySigned   Status = "partially_signed"
	StatusRevisionRequested Status = "revision_requested"
	StatusCompleted         Status = "completed"
	StatusDeclined          Status = "declined"
	StatusExpired           Status = "expired"
	StatusArchived          Status = "archived"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusDraft,
	StatusSent,
	StatusViewed,
	StatusPartiallySigned,
	StatusRevisionRequested,
	StatusCompleted,
	StatusDeclined,
	StatusExpired,
	StatusArchived,
}

// IsValid reports whether s is one of the nine lifecycle states
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsEditable reports whether the contract body and variables may change in this state
func (s Status) IsEditable() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusRevisionRequested:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown contract status %q", v)
	}
	return s, nil
}

// Action is a named lifecycle operation
type Action string

const (
	ActionProviderSign   Action = "provider_sign"
	ActionView           Action = "view"
	ActionClientSign     Action = "client_sign"
	ActionRequestChanges Action = "request_changes"
	ActionDecline        Action = "decline"
	ActionExpire         Action = "expire"
	ActionArchive        Action = "archive"
	ActionUnarchive      Action = "unarchive"
	ActionRestore        Action = "restore"
	ActionEditVariables  Action = "edit_variables"
	ActionPrepare        Action = "prepare"
)

// allowedFrom lists the source states for each action. Archive and restore are
// handled separately because they are legal from every state except archived.
var allowedFrom = map[Action][]Status{
	ActionPrepare:        {StatusDraft},
	ActionProviderSign:   {StatusDraft},
	ActionView:           {StatusSent, StatusViewed, StatusPartiallySigned, StatusRevisionRequested},
	ActionClientSign:     {StatusSent, StatusViewed, StatusPartiallySigned, StatusRevisionRequested},
	ActionRequestChanges: {StatusSent, StatusViewed, StatusPartiallySigned},
	ActionDecline:        {StatusSent, StatusViewed, StatusPartiallySigned},
	ActionExpire:         {StatusSent, StatusViewed, StatusPartiallySigned, StatusRevisionRequested},
	ActionUnarchive:      {StatusArchived},
	ActionEditVariables:  {StatusDraft, StatusSent, StatusViewed, StatusRevisionRequested},
}

// CanPerform reports whether the action is legal from status s
func CanPerform(s Status, a Action) bool {
	if a == ActionArchive || a == ActionRestore {
		return s.IsValid() && s != StatusArchived
	}
	for _, from := range allowedFrom[a] {
		if from == s {
			return true
		}
	}
	return false
}
