package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"

	"studioflow/internal/config"
	"studioflow/internal/domain/services"
)

const (
	clauseInstructions = "You draft clauses for service contracts between a solo creative professional and their client. " +
		"Reply with the clause text only, in plain language, without headings or commentary."
	answerInstructions = "You help a creative professional fill in a contract questionnaire. " +
		"Reply with exactly three short candidate answers, one per line, with no numbering or extra text."
)

// generator is the slice of the provider library the suggester needs
type generator interface {
	GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error)
}

// Suggester implements services.TextSuggester on top of an LLM provider
type Suggester struct {
	gen     generator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSuggester wraps a provider. A nil generator yields a suggester that always degrades.
func NewSuggester(gen generator, model string, timeout time.Duration, logger *slog.Logger) *Suggester {
	return &Suggester{gen: gen, model: model, timeout: timeout, logger: logger}
}

// SetupSuggester resolves the configured model to a provider.
// When AI is off or unavailable the returned suggester degrades to empty results.
func SetupSuggester(cfg *config.Config, logger *slog.Logger) services.TextSuggester {
	if cfg.AIModel == "" || cfg.AIModel == "off" {
		logger.Info("ai suggestions disabled")
		return NewSuggester(nil, "", cfg.AITimeout, logger)
	}

	ref, err := parseModelRef(cfg.AIModel)
	if err != nil {
		logger.Warn("ai suggestions unavailable", "model", cfg.AIModel, "error", err)
		return NewSuggester(nil, "", cfg.AITimeout, logger)
	}

	provider, err := openProvider(ref, cfg.AnthropicAPIKey)
	if err != nil {
		logger.Warn("ai suggestions unavailable", "provider", ref.provider, "error", err)
		return NewSuggester(nil, "", cfg.AITimeout, logger)
	}

	logger.Info("ai suggestions available", "provider", ref.provider, "model", ref.model)
	return NewSuggester(provider, ref.model, cfg.AITimeout, logger)
}

// SuggestClause drafts one clause
func (s *Suggester) SuggestClause(ctx context.Context, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ""
	}
	text, err := s.generate(ctx, clauseInstructions+"\n\nClause request: "+prompt)
	if err != nil {
		s.logger.Warn("clause suggestion failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// SuggestAnswers proposes three answers; missing slots stay empty
func (s *Suggester) SuggestAnswers(ctx context.Context, question, known string) [3]string {
	var out [3]string
	question = strings.TrimSpace(question)
	if question == "" {
		return out
	}

	prompt := answerInstructions + "\n\nQuestion: " + question
	if known = strings.TrimSpace(known); known != "" {
		prompt += "\nKnown details:\n" + known
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("answer suggestion failed", "error", err)
		return out
	}

	n := 0
	for _, line := range strings.Split(text, "\n") {
		if n == len(out) {
			break
		}
		if line = cleanSuggestion(line); line != "" {
			out[n] = line
			n++
		}
	}
	return out
}

func (s *Suggester) generate(ctx context.Context, prompt string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("no provider configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.gen.GenerateResponse(ctx, &llmprovider.GenerateRequest{
		Model: s.model,
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{BlockType: "text", TextContent: &prompt},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from %s", s.model)
	}
	return b.String(), nil
}

// cleanSuggestion strips list markers a model tends to add anyway
func cleanSuggestion(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*• ")
	if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 && isDigits(line[:i]) {
		line = line[i+1:]
	}
	return strings.Trim(strings.TrimSpace(line), `"`)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
