package classify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini classifies images with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return string(ProviderGemini) }

// Classify sends the image inline followed by the classification question.
func (g *Gemini) Classify(ctx context.Context, image []byte, mimeType string) (string, error) {
	log.Debug().
		Int("image_bytes", len(image)).
		Str("mime", mimeType).
		Str("model", g.model).
		Msg("Sending image to Gemini")

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: Prompt},
		},
	}}
	config := &genai.GenerateContentConfig{MaxOutputTokens: maxOutputTokens}

	return call(ctx, g.Name(), g.model, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			return "", err
		}
		if resp == nil {
			return "", nil
		}
		return resp.Text(), nil
	})
}
