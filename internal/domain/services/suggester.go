package services

import "context"

// TextSuggester drafts text with a generative model. Both calls are
// best-effort: failures yield "" (or empty slots) and never an error.
type TextSuggester interface {
	// SuggestClause drafts a contract clause from a free-text description
	SuggestClause(ctx context.Context, prompt string) string

	// SuggestAnswers proposes up to three answers to a guided-build question
	SuggestAnswers(ctx context.Context, question, known string) [3]string
}
