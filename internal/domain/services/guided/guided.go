package guided

import (
	"context"
	"fmt"

	"studioflow/internal/domain"
	contractModels "studioflow/internal/domain/models/contract"
)

// ErrNotInReview is returned when completing a build that still has questions left
var ErrNotInReview = fmt.Errorf("%w: answer the remaining questions first", domain.ErrConflict)

// Phase is the conversation's position in the script
type Phase string

const (
	PhaseAsking Phase = "asking"
	PhaseReview Phase = "review"
)

// Speaker roles in the transcript
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is one transcript line
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// QuestionView is the question currently awaiting an answer
type QuestionView struct {
	ID      string   `json:"id"`
	Field   string   `json:"field"`
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
	Default string   `json:"default,omitempty"`
}

// SessionView is a read-only snapshot of a guided build
type SessionView struct {
	ID            string                   `json:"id"`
	Phase         Phase                    `json:"phase"`
	Cursor        int                      `json:"cursor"`
	AwaitingInput bool                     `json:"awaiting_input"`
	Values        contractModels.Variables `json:"values"`
	Transcript    []Message                `json:"transcript"`
	Question      *QuestionView            `json:"question,omitempty"`
	Addons        []string                 `json:"addons"`
	CanUndo       bool                     `json:"can_undo"`
	CanRedo       bool                     `json:"can_redo"`
}

// CompleteRequest names the provider side of the generated contract
type CompleteRequest struct {
	ClientID string `json:"client_id,omitempty"`
}

// GuidedService runs question-by-question contract builds held in memory.
// Sessions are scoped to the organization that started them.
type GuidedService interface {
	StartSession(ctx context.Context, organizationID string) (*SessionView, error)
	GetSession(ctx context.Context, id, organizationID string) (*SessionView, error)

	// Submit answers the current question or runs an "add <name>" command
	Submit(ctx context.Context, id, organizationID, input string) (*SessionView, error)

	Undo(ctx context.Context, id, organizationID string) (*SessionView, error)
	Redo(ctx context.Context, id, organizationID string) (*SessionView, error)

	// SuggestAnswers asks the AI collaborator for candidate answers to the current question
	SuggestAnswers(ctx context.Context, id, organizationID string) ([3]string, error)

	// Complete turns a reviewed build into a draft contract and ends the session
	Complete(ctx context.Context, id, organizationID string, req *CompleteRequest, actor contractModels.Actor) (*contractModels.Contract, error)

	Abandon(ctx context.Context, id, organizationID string) error
}
