package classify

import (
	"context"
	"encoding/base64"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAI classifies images through an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client. An empty baseURL uses the public OpenAI API.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(config), model: model}
}

func (o *OpenAI) Name() string { return string(ProviderOpenAI) }

// Classify sends the question and the image as a data URL in one user message.
func (o *OpenAI) Classify(ctx context.Context, image []byte, mimeType string) (string, error) {
	log.Debug().
		Int("image_bytes", len(image)).
		Str("model", o.model).
		Msg("Sending image to OpenAI-compatible endpoint")

	req := openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	}

	return call(ctx, o.Name(), o.model, func(ctx context.Context) (string, error) {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
}
