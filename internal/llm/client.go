// Package llm integrates with Anthropic's Claude to generate stock
// media metadata: titles, descriptions, keywords, alt text, category
// and editorial classification, plus deep keyword analysis and
// translation. All failures are normalized into a closed error
// taxonomy at this boundary.
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	maxAttempts = 3
	retryBase   = 2 * time.Second
)

// Client wraps the Anthropic client for metadata generation
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retryBase time.Duration
}

// NewClient creates a new LLM client
func NewClient(apiKey string, model string, maxTokens int) *Client {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Client{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
		retryBase: retryBase,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// MaxTokens returns the configured max tokens
func (c *Client) MaxTokens() int64 {
	return c.maxTokens
}

// callText sends one vision request and returns the text response and
// the estimated token cost. Transient failures are retried with linear
// backoff; everything else fails fast.
func (c *Client) callText(ctx context.Context, imageData []byte, mimeType, prompt string) (string, int64, error) {
	if len(imageData) == 0 {
		return "", 0, NewError(KindUnsupportedFormat, fmt.Errorf("image data is empty"))
	}
	if !isImageMimeType(mimeType) {
		return "", 0, NewError(KindUnsupportedFormat, fmt.Errorf("invalid MIME type for image: %s", mimeType))
	}

	base64Image := base64.StdEncoding.EncodeToString(imageData)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, base64Image),
				anthropic.NewTextBlock(prompt),
			),
		},
	}

	message, err := c.messagesWithRetry(ctx, params)
	if err != nil {
		return "", 0, err
	}

	text, err := extractText(message)
	if err != nil {
		return "", 0, err
	}

	return text, message.Usage.InputTokens + message.Usage.OutputTokens, nil
}

// callPlainText sends a text-only request (used for translation)
func (c *Client) callPlainText(ctx context.Context, prompt string) (string, int64, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := c.messagesWithRetry(ctx, params)
	if err != nil {
		return "", 0, err
	}

	text, err := extractText(message)
	if err != nil {
		return "", 0, err
	}

	return text, message.Usage.InputTokens + message.Usage.OutputTokens, nil
}

func (c *Client) messagesWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr *ServiceError
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			// Linear backoff between attempts.
			select {
			case <-ctx.Done():
				return nil, Normalize(ctx.Err())
			case <-time.After(time.Duration(attempt) * c.retryBase):
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}

		serr := Normalize(err)
		if !serr.Retryable() {
			return nil, serr
		}
		lastErr = serr
	}
	return nil, lastErr
}

func extractText(message *anthropic.Message) (string, error) {
	if len(message.Content) == 0 {
		return "", NewError(KindUnknown, fmt.Errorf("no content in response"))
	}
	if message.Content[0].Type != "text" {
		return "", NewError(KindUnknown, fmt.Errorf("unexpected response type: %s", message.Content[0].Type))
	}
	return message.Content[0].Text, nil
}

// isImageMimeType checks if the MIME type is a valid image type
func isImageMimeType(mimeType string) bool {
	validTypes := []string{
		"image/png",
		"image/jpeg",
		"image/gif",
		"image/webp",
	}

	for _, valid := range validTypes {
		if mimeType == valid {
			return true
		}
	}
	return false
}
