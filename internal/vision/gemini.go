package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/specto/internal/common"
)

// GeminiProvider sends screenshot analysis requests to the Gemini API.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  arbor.ILogger
}

// NewGeminiProvider creates a Gemini vision provider.
func NewGeminiProvider(config common.VisionConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	timeout := config.TimeoutDuration()

	logger.Info().Str("model", config.Model).Msg("Gemini vision provider initialized")
	return &GeminiProvider{
		client:  client,
		model:   config.Model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name identifies the provider in logs and fallback records.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate sends the prompt and screenshot, returning the raw model text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, jpeg []byte) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(jpeg, "image/jpeg"),
			},
		},
	}

	startTime := time.Now()
	resp, err := p.client.Models.GenerateContent(genCtx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from vision model")
	}

	p.logger.Debug().
		Str("model", p.model).
		Dur("duration", time.Since(startTime)).
		Int("response_chars", response.Len()).
		Msg("Gemini vision call completed")
	return response.String(), nil
}
