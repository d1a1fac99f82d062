package ai

import (
	"context"
	"testing"
)

// stubSettings is a map-backed SettingsGetter for provider tests.
type stubSettings map[string]string

func (s stubSettings) Get(key, defaultValue string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return defaultValue
}

func TestToGroqMessages_RolesMapDirectly(t *testing.T) {
	messages := []ChatMessage{
		{Role: RoleSystem, Content: "S"},
		{Role: RoleUser, Content: "U"},
		{Role: RoleAssistant, Content: "A"},
	}

	out := toGroqMessages(messages)

	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	for i, want := range []struct{ role, content string }{
		{"system", "S"},
		{"user", "U"},
		{"assistant", "A"},
	} {
		if out[i].Role != want.role {
			t.Errorf("out[%d].Role = %q, expected %q", i, out[i].Role, want.role)
		}
		if out[i].Content != want.content {
			t.Errorf("out[%d].Content = %q, expected %q", i, out[i].Content, want.content)
		}
	}
}

func TestGroqProvider_IsConfigured(t *testing.T) {
	p := NewGroqProvider(stubSettings{})
	if p.IsConfigured() {
		t.Error("provider without key should not be configured")
	}

	p = NewGroqProvider(stubSettings{"ai_groq_api_key": "gsk_test"})
	if !p.IsConfigured() {
		t.Error("provider with key should be configured")
	}
}

func TestGroqProvider_ChatWithMedia_Unsupported(t *testing.T) {
	p := NewGroqProvider(stubSettings{"ai_groq_api_key": "gsk_test"})

	result := p.ChatWithMedia(context.Background(), []ChatMessage{{Role: RoleUser, Content: "describe"}},
		MediaAttachment{MimeType: "image/png", Data: "aGVsbG8="}, ChatOptions{})

	if result.Success {
		t.Error("media calls should fail on groq")
	}
	if result.Error == "" {
		t.Error("failure result must carry an error message")
	}
}

func TestGroqProvider_DefaultModelFromSettings(t *testing.T) {
	p := NewGroqProvider(stubSettings{"ai_groq_default_model": "llama-3.1-8b-instant"})
	if got := p.defaultModel(); got != "llama-3.1-8b-instant" {
		t.Errorf("defaultModel() = %q, expected setting value", got)
	}

	p = NewGroqProvider(stubSettings{})
	if got := p.defaultModel(); got != groqFallbackModel {
		t.Errorf("defaultModel() = %q, expected fallback %q", got, groqFallbackModel)
	}
}

func TestChatOptions_Defaults(t *testing.T) {
	opts := ChatOptions{}
	if got := opts.temperature(); got != 0.7 {
		t.Errorf("default temperature = %v, expected 0.7", got)
	}
	if got := opts.maxTokens(); got != 2048 {
		t.Errorf("default max tokens = %d, expected 2048", got)
	}

	override := 1.5
	opts = ChatOptions{Temperature: &override, MaxTokens: 100}
	if got := opts.temperature(); got != 1.5 {
		t.Errorf("temperature = %v, expected override", got)
	}
	if got := opts.maxTokens(); got != 100 {
		t.Errorf("max tokens = %d, expected override", got)
	}

	zero := 0.0
	opts = ChatOptions{Temperature: &zero}
	if got := opts.temperature(); got != 0 {
		t.Errorf("temperature = %v, expected explicit 0 honored", got)
	}
}
