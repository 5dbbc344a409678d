package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"directorassist/internal/apperrors"
)

// OpenAIProvider enveloppe le SDK OpenAI
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider crée le fournisseur OpenAI
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name retourne l'identifiant du fournisseur
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Supports indique si le modèle appartient aux familles OpenAI
func (p *OpenAIProvider) Supports(model string) bool {
	return hasModelPrefix(model, "gpt-", "o1", "o3", "o4")
}

// Generate produit une complétion de chat en une seule tentative
func (p *OpenAIProvider) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnavailable, "openai completion failed", err)
	}

	if len(completion.Choices) == 0 {
		return "", apperrors.New(apperrors.KindUnavailable, "openai returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
