// Package ai fournit un registre de fournisseurs de génération de texte.
// Chaque fournisseur enveloppe un SDK vendeur derrière la même interface;
// la résolution se fait par préfixe de nom de modèle. Chaque génération est
// une tentative unique, sans streaming ni retry.
package ai

import (
	"context"
	"strings"
	"sync"

	"directorassist/internal/apperrors"
	"directorassist/internal/config"
)

// Provider définit un fournisseur de génération de texte
type Provider interface {
	// Name retourne l'identifiant du fournisseur
	Name() string
	// Supports indique si le fournisseur sert ce modèle
	Supports(model string) bool
	// Generate produit une complétion de texte en une seule tentative
	Generate(ctx context.Context, model, system, prompt string) (string, error)
}

// Registry résout les fournisseurs par modèle demandé
type Registry struct {
	mu           sync.RWMutex
	providers    []Provider
	defaultModel string
}

// NewRegistry construit le registre depuis la configuration.
// Les fournisseurs sans clé API sont omis.
func NewRegistry(cfg config.AIConfig) (*Registry, error) {
	r := &Registry{defaultModel: cfg.DefaultModel}

	if cfg.OpenAIAPIKey != "" {
		r.Register(NewOpenAIProvider(cfg.OpenAIAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		provider, err := NewGeminiProvider(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		r.Register(provider)
	}

	return r, nil
}

// Register ajoute un fournisseur au registre
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// DefaultModel retourne le modèle utilisé quand la demande n'en précise pas
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Resolve retourne le fournisseur servant le modèle donné
func (r *Registry) Resolve(model string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, provider := range r.providers {
		if provider.Supports(model) {
			return provider, nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindValidation, "no provider available for model %q", model)
}

// Generate résout le fournisseur puis délègue la génération
func (r *Registry) Generate(ctx context.Context, model, system, prompt string) (string, string, error) {
	if model == "" {
		model = r.defaultModel
	}

	provider, err := r.Resolve(model)
	if err != nil {
		return "", "", err
	}

	text, err := provider.Generate(ctx, model, system, prompt)
	if err != nil {
		return "", provider.Name(), err
	}
	return text, provider.Name(), nil
}

// hasModelPrefix teste les préfixes de familles de modèles
func hasModelPrefix(model string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
