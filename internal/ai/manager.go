package ai

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a provider from the settings accessor.
type Factory func(settings SettingsGetter) Provider

// Manager resolves provider names to memoized Provider instances.
// Providers are constructed on first use and cached for the process
// lifetime; they are stateless beyond the settings reference, so
// concurrent use is safe.
type Manager struct {
	settings  SettingsGetter
	mu        sync.Mutex
	factories map[string]Factory
	providers map[string]Provider
}

func NewManager(settings SettingsGetter) *Manager {
	m := &Manager{
		settings:  settings,
		factories: make(map[string]Factory),
		providers: make(map[string]Provider),
	}
	m.Register("groq", func(s SettingsGetter) Provider { return NewGroqProvider(s) })
	m.Register("gemini", func(s SettingsGetter) Provider { return NewGeminiProvider(s) })
	return m
}

// Register adds a provider factory under the given name. Registering an
// existing name replaces the factory and drops any memoized instance.
func (m *Manager) Register(name string, factory Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[name] = factory
	delete(m.providers, name)
}

// Provider returns the memoized provider for name, instantiating it on
// first use. Unknown names are a programmer error and fail fast.
func (m *Manager) Provider(name string) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	factory, ok := m.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider: %q", name)
	}
	p := factory(m.settings)
	m.providers[name] = p
	return p, nil
}

// Names returns the registered provider names, sorted.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
