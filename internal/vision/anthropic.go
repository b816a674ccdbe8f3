package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
)

// AnthropicProvider sends screenshot analysis requests to the Claude API.
type AnthropicProvider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	logger  arbor.ILogger
}

// NewAnthropicProvider creates a Claude vision provider.
func NewAnthropicProvider(config common.VisionConfig, logger arbor.ILogger) (*AnthropicProvider, error) {
	if config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.AnthropicAPIKey),
	)

	timeout := config.TimeoutDuration()

	logger.Info().Str("model", config.Model).Msg("Anthropic vision provider initialized")
	return &AnthropicProvider{
		client:  client,
		model:   config.Model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name identifies the provider in logs and fallback records.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate sends the prompt and screenshot, returning the raw model text.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, jpeg []byte) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(jpeg)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/jpeg", encoded),
				anthropic.NewTextBlock(prompt),
			),
		},
	}

	startTime := time.Now()
	resp, err := p.client.Messages.New(genCtx, params)
	if err != nil {
		return "", fmt.Errorf("claude generation failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from vision model")
	}

	p.logger.Debug().
		Str("model", p.model).
		Dur("duration", time.Since(startTime)).
		Int("response_chars", response.Len()).
		Msg("Claude vision call completed")
	return response.String(), nil
}
