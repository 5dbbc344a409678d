package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directorassist/internal/apperrors"
	"directorassist/internal/config"
)

type stubProvider struct {
	name     string
	prefixes []string
	response string
	err      error
	lastCall struct {
		model  string
		system string
		prompt string
	}
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Supports(model string) bool {
	return hasModelPrefix(model, p.prefixes...)
}

func (p *stubProvider) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	p.lastCall.model = model
	p.lastCall.system = system
	p.lastCall.prompt = prompt
	return p.response, p.err
}

func TestRegistry_ResolveByModelPrefix(t *testing.T) {
	openai := &stubProvider{name: "openai", prefixes: []string{"gpt-", "o1", "o3", "o4"}}
	gemini := &stubProvider{name: "gemini", prefixes: []string{"gemini-"}}

	registry := &Registry{defaultModel: "gpt-4o-mini"}
	registry.Register(openai)
	registry.Register(gemini)

	provider, err := registry.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	provider, err = registry.Resolve("o3-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	provider, err = registry.Resolve("gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini", provider.Name())

	_, err = registry.Resolve("claude-sonnet")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRegistry_GenerateUsesDefaultModel(t *testing.T) {
	provider := &stubProvider{name: "openai", prefixes: []string{"gpt-"}, response: "The tavern is dim and loud."}
	registry := &Registry{defaultModel: "gpt-4o-mini"}
	registry.Register(provider)

	text, name, err := registry.Generate(context.Background(), "", "You are a game master", "Describe the tavern")
	require.NoError(t, err)
	assert.Equal(t, "The tavern is dim and loud.", text)
	assert.Equal(t, "openai", name)
	assert.Equal(t, "gpt-4o-mini", provider.lastCall.model)
	assert.Equal(t, "You are a game master", provider.lastCall.system)
}

func TestRegistry_GenerateReportsProviderFailure(t *testing.T) {
	provider := &stubProvider{
		name:     "openai",
		prefixes: []string{"gpt-"},
		err:      apperrors.New(apperrors.KindUnavailable, "openai request failed"),
	}
	registry := &Registry{defaultModel: "gpt-4o-mini"}
	registry.Register(provider)

	_, name, err := registry.Generate(context.Background(), "gpt-4o", "", "prompt")
	assert.Equal(t, "openai", name)
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestNewRegistry_OmitsKeylessProviders(t *testing.T) {
	registry, err := NewRegistry(config.AIConfig{DefaultModel: "gpt-4o-mini"})
	require.NoError(t, err)

	// Without API keys no provider can serve any model
	_, err = registry.Resolve("gpt-4o")
	assert.Error(t, err)
}

func TestOpenAIProvider_Supports(t *testing.T) {
	provider := NewOpenAIProvider("test-key")
	assert.True(t, provider.Supports("gpt-4o-mini"))
	assert.True(t, provider.Supports("o1-preview"))
	assert.False(t, provider.Supports("gemini-2.0-flash"))
}
