package classify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Ollama classifies images with a local multimodal model.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates a client for host, or from OLLAMA_HOST when host is empty.
func NewOllama(host, model string) (*Ollama, error) {
	if host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return &Ollama{client: client, model: model}, nil
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama host %q: %w", host, err)
	}
	return &Ollama{client: api.NewClient(u, http.DefaultClient), model: model}, nil
}

func (o *Ollama) Name() string { return string(ProviderOllama) }

// Classify runs one non-streaming generate request with the image attached.
func (o *Ollama) Classify(ctx context.Context, image []byte, mimeType string) (string, error) {
	log.Debug().
		Int("image_bytes", len(image)).
		Str("model", o.model).
		Msg("Sending image to Ollama")

	req := &api.GenerateRequest{
		Model:     o.model,
		Prompt:    Prompt,
		Stream:    lo.ToPtr(false),
		KeepAlive: lo.ToPtr(api.Duration{Duration: 5 * time.Minute}),
		Images:    []api.ImageData{image},
		Options:   map[string]any{"num_predict": maxOutputTokens},
	}

	return call(ctx, o.Name(), o.model, func(ctx context.Context) (string, error) {
		var sb strings.Builder
		err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
			sb.WriteString(resp.Response)
			return nil
		})
		return sb.String(), err
	})
}
