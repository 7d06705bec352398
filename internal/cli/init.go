package cli

import (
	"context"
	"errors"

	"github.com/fpang/lapse-classify/internal/auth"
	"github.com/fpang/lapse-classify/internal/classify"
	"github.com/rs/zerolog/log"
)

// InitClassifier builds the classifier for the named provider.
// It fails only for an unknown provider. A missing credential or a client
// that cannot be created is logged and replaced by a classifier whose every
// call fails, so each image is reported individually instead of aborting.
func InitClassifier(ctx context.Context, providerName, modelFlag string) (classify.Classifier, string, error) {
	provider, err := classify.ParseProvider(providerName)
	if err != nil {
		return nil, "", err
	}
	model := classify.ModelName(provider, modelFlag)

	apiKey, err := auth.GetAPIKey(string(provider))
	if err != nil {
		errType := classify.ErrTypeProvider
		if errors.Is(err, auth.ErrNoCredential) {
			errType = classify.ErrTypeNoCredential
		}
		ReportClassifierError(&classify.ClassificationError{
			Provider: string(provider),
			Type:     errType,
			Message:  "no credential",
			Err:      err,
		})
		return classify.NewUnavailable(provider, errType, err), model, nil
	}

	c, err := classify.New(ctx, classify.Options{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  classify.BaseURL(provider),
	})
	if err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Failed to create classifier client")
		return classify.NewUnavailable(provider, classify.ErrTypeProvider, err), model, nil
	}

	log.Info().
		Str("provider", string(provider)).
		Str("model", model).
		Msg("Classifier initialized")

	return c, model, nil
}
