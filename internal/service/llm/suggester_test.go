package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *stubGenerator) GenerateResponse(_ context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if len(req.Messages) > 0 && len(req.Messages[0].Blocks) > 0 {
		g.prompt = *req.Messages[0].Blocks[0].TextContent
	}
	if g.err != nil {
		return nil, g.err
	}
	text := g.text
	return &llmprovider.GenerateResponse{
		Blocks: []*llmprovider.Block{{BlockType: "text", TextContent: &text}},
	}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSuggestAnswers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [3]string
	}{
		{"plain lines", "Wedding\nEngagement\nElopement", [3]string{"Wedding", "Engagement", "Elopement"}},
		{"numbered", "1. Wedding\n2) Engagement\n\n3. Elopement\n4. Portrait", [3]string{"Wedding", "Engagement", "Elopement"}},
		{"bullets and quotes", "- \"8 hours\"\n* 10 hours", [3]string{"8 hours", "10 hours", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{text: tt.text}
			s := NewSuggester(gen, "lorem-fast", time.Second, quietLogger())
			got := s.SuggestAnswers(context.Background(), "What kind of event?", "client_name: Ana")
			if got != tt.want {
				t.Errorf("SuggestAnswers = %q, want %q", got, tt.want)
			}
			if !strings.Contains(gen.prompt, "client_name: Ana") {
				t.Errorf("prompt missing context: %q", gen.prompt)
			}
		})
	}
}

func TestSuggesterDegrades(t *testing.T) {
	ctx := context.Background()

	failing := NewSuggester(&stubGenerator{err: errors.New("rate limited")}, "claude-haiku-4-5", time.Second, quietLogger())
	if got := failing.SuggestClause(ctx, "cancellation within 30 days"); got != "" {
		t.Errorf("failing clause = %q, want empty", got)
	}
	if got := failing.SuggestAnswers(ctx, "Venue?", ""); got != ([3]string{}) {
		t.Errorf("failing answers = %q, want empty", got)
	}

	disabled := NewSuggester(nil, "", 0, quietLogger())
	if got := disabled.SuggestClause(ctx, "deposit terms"); got != "" {
		t.Errorf("disabled clause = %q, want empty", got)
	}
}

func TestSuggestClause(t *testing.T) {
	gen := &stubGenerator{text: "  The deposit is non-refundable.\n"}
	s := NewSuggester(gen, "lorem-fast", 0, quietLogger())

	if got := s.SuggestClause(context.Background(), "deposit"); got != "The deposit is non-refundable." {
		t.Errorf("SuggestClause = %q", got)
	}
	if got := s.SuggestClause(context.Background(), "   "); got != "" {
		t.Errorf("blank prompt = %q, want empty", got)
	}
}
