// Package classify talks to remote vision models and turns their free-text
// answers into one of the four subject categories.
package classify

import (
	"context"
	"fmt"
	"strings"
)

// Classifier asks a vision model which category an image shows and returns
// the model's raw answer.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Provider names a supported classifier backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// Providers lists supported providers; the first is the default.
var Providers = []Provider{ProviderGemini, ProviderOpenAI, ProviderOllama}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Providers[0], nil
	}
	for _, p := range Providers {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: %s)", name, providerList())
}

func providerList() string {
	names := make([]string, len(Providers))
	for i, p := range Providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Options configure New.
type Options struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoint or Ollama host; empty for defaults
}

// New builds the classifier for the configured provider.
func New(ctx context.Context, opts Options) (Classifier, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel(opts.Provider)
	}

	switch opts.Provider {
	case ProviderGemini:
		return NewGemini(ctx, opts.APIKey, model)
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, opts.BaseURL, model), nil
	case ProviderOllama:
		return NewOllama(opts.BaseURL, model)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// unavailable fails every call with the same error. It stands in for a
// provider whose credential or client could not be set up, so the run still
// proceeds and each image is reported as failed.
type unavailable struct {
	provider Provider
	err      *ClassificationError
}

// NewUnavailable returns a Classifier that always fails with cause.
func NewUnavailable(provider Provider, errType ErrorType, cause error) Classifier {
	return &unavailable{
		provider: provider,
		err: &ClassificationError{
			Provider: string(provider),
			Type:     errType,
			Message:  "classifier unavailable",
			Err:      cause,
		},
	}
}

func (u *unavailable) Name() string { return string(u.provider) }

func (u *unavailable) Classify(ctx context.Context, image []byte, mimeType string) (string, error) {
	return "", u.err
}
