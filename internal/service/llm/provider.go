package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"
)

// modelRef is AI_MODEL split into the provider that serves it and the model name
type modelRef struct {
	provider string
	model    string
}

// parseModelRef accepts "provider/model" or a bare model name whose prefix
// identifies the provider ("claude-" → anthropic, "lorem-" → lorem)
func parseModelRef(s string) (modelRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return modelRef{}, errors.New("model name is empty")
	}

	if provider, model, ok := strings.Cut(s, "/"); ok {
		if provider == "" || model == "" {
			return modelRef{}, fmt.Errorf("model %q: want provider/model", s)
		}
		return modelRef{provider: provider, model: model}, nil
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "claude-"):
		return modelRef{provider: "anthropic", model: s}, nil
	case strings.HasPrefix(lower, "lorem-"):
		return modelRef{provider: "lorem", model: s}, nil
	}
	return modelRef{}, fmt.Errorf("model %q: cannot tell which provider serves it", s)
}

// openProvider builds the client for ref. lorem needs no key and answers
// offline, which keeps suggestions usable in dev.
func openProvider(ref modelRef, anthropicKey string) (generator, error) {
	switch ref.provider {
	case "anthropic":
		if anthropicKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		p, err := anthropic.NewProvider(anthropicKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		return p, nil
	case "lorem":
		return lorem.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", ref.provider)
	}
}
