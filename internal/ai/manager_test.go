package ai

import (
	"context"
	"testing"
)

func TestManager_KnownProviders(t *testing.T) {
	m := NewManager(stubSettings{})

	for _, name := range []string{"groq", "gemini"} {
		p, err := m.Provider(name)
		if err != nil {
			t.Fatalf("Provider(%q) returned error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Provider(%q).Name() = %q", name, p.Name())
		}
	}
}

func TestManager_UnknownProviderFailsFast(t *testing.T) {
	m := NewManager(stubSettings{})

	if _, err := m.Provider("openai"); err == nil {
		t.Error("unknown provider name should return an error")
	}
}

func TestManager_MemoizesInstances(t *testing.T) {
	m := NewManager(stubSettings{})

	a, _ := m.Provider("groq")
	b, _ := m.Provider("groq")
	if a != b {
		t.Error("repeated lookups should return the same memoized instance")
	}
}

func TestManager_RegisterReplaces(t *testing.T) {
	m := NewManager(stubSettings{})

	first, _ := m.Provider("groq")
	m.Register("groq", func(s SettingsGetter) Provider { return &spyProvider{name: "groq"} })
	second, _ := m.Provider("groq")

	if first == second {
		t.Error("re-registering should drop the memoized instance")
	}
	if _, ok := second.(*spyProvider); !ok {
		t.Error("new factory should be used after re-registration")
	}
}

func TestManager_Names(t *testing.T) {
	m := NewManager(stubSettings{})

	names := m.Names()
	if len(names) != 2 || names[0] != "gemini" || names[1] != "groq" {
		t.Errorf("Names() = %v, expected sorted [gemini groq]", names)
	}
}

// spyProvider records calls and returns a canned result.
type spyProvider struct {
	name         string
	configured   bool
	result       *Result
	chatCalls    int
	lastMessages []ChatMessage
	lastOpts     ChatOptions
}

func (s *spyProvider) Name() string       { return s.name }
func (s *spyProvider) IsConfigured() bool { return s.configured }

func (s *spyProvider) Chat(_ context.Context, messages []ChatMessage, opts ChatOptions) *Result {
	s.chatCalls++
	s.lastMessages = messages
	s.lastOpts = opts
	if s.result != nil {
		return s.result
	}
	return &Result{Success: true, Content: "spy"}
}

func (s *spyProvider) ChatWithMedia(ctx context.Context, messages []ChatMessage, _ MediaAttachment, opts ChatOptions) *Result {
	return s.Chat(ctx, messages, opts)
}

func (s *spyProvider) TestConnection(_ context.Context) *Result {
	return &Result{Success: true, Content: "pong"}
}

func (s *spyProvider) AvailableModels() map[string]string {
	return map[string]string{"spy-model": "Spy Model"}
}
