package llm

import "testing"

func TestParseModelRef(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{in: "claude-haiku-4-5", wantProvider: "anthropic", wantModel: "claude-haiku-4-5"},
		{in: "anthropic/claude-sonnet-4-5", wantProvider: "anthropic", wantModel: "claude-sonnet-4-5"},
		{in: "  lorem-fast ", wantProvider: "lorem", wantModel: "lorem-fast"},
		{in: "", wantErr: true},
		{in: "gpt-4", wantErr: true},
		{in: "anthropic/", wantErr: true},
		{in: "/claude-haiku-4-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, err := parseModelRef(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseModelRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (ref.provider != tt.wantProvider || ref.model != tt.wantModel) {
				t.Errorf("ref = %+v, want %s/%s", ref, tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestOpenProvider(t *testing.T) {
	if _, err := openProvider(modelRef{provider: "lorem", model: "lorem-fast"}, ""); err != nil {
		t.Errorf("lorem needs no key: %v", err)
	}
	if _, err := openProvider(modelRef{provider: "anthropic", model: "claude-haiku-4-5"}, ""); err == nil {
		t.Error("anthropic without a key must fail")
	}
	if _, err := openProvider(modelRef{provider: "openai", model: "gpt-4"}, "key"); err == nil {
		t.Error("unknown provider must fail")
	}
}
