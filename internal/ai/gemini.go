package ai

import (
	"context"

	"google.golang.org/genai"

	"directorassist/internal/apperrors"
)

// GeminiProvider enveloppe le SDK Google GenAI
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider crée le fournisseur Gemini
func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "failed to create genai client", err)
	}

	return &GeminiProvider{client: client}, nil
}

// Name retourne l'identifiant du fournisseur
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Supports indique si le modèle appartient à la famille Gemini
func (p *GeminiProvider) Supports(model string) bool {
	return hasModelPrefix(model, "gemini-")
}

// Generate produit une complétion de texte en une seule tentative
func (p *GeminiProvider) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnavailable, "gemini generation failed", err)
	}

	text := result.Text()
	if text == "" {
		return "", apperrors.New(apperrors.KindUnavailable, "gemini returned no text")
	}

	return text, nil
}
