package foodlog

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/avicenna-health/avicenna/internal/config"
)

var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Completion is one chat-completion round trip: the raw JSON content plus the
// token count for the usage ledger.
type Completion struct {
	Content    string
	TokensUsed int
}

// Completer is the slice of the OpenAI client this package needs; tests swap
// in a fake.
type Completer interface {
	CompleteText(ctx context.Context, systemPrompt, userText string) (*Completion, error)
	CompleteImage(ctx context.Context, systemPrompt string, image []byte, contentType, context string) (*Completion, error)
}

type openAIClient struct {
	client *openai.Client
	cfg    config.AIConfig
}

// NewClient builds a chat-completion client against the configured endpoint.
// Any OpenAI-compatible server works through BaseURL.
func NewClient(cfg config.AIConfig) Completer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

func (c *openAIClient) CompleteText(ctx context.Context, systemPrompt, userText string) (*Completion, error) {
	return c.complete(ctx, systemPrompt, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Log this food: %s", userText),
	})
}

func (c *openAIClient) CompleteImage(ctx context.Context, systemPrompt string, image []byte, contentType, imageContext string) (*Completion, error) {
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}

	text := "Identify and log the food in this image."
	if imageContext != "" {
		text += " Additional context: " + imageContext
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))
	return c.complete(ctx, systemPrompt, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailHigh,
				},
			},
		},
	})
}

func (c *openAIClient) complete(ctx context.Context, systemPrompt string, userMessage openai.ChatCompletionMessage) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			userMessage,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return &Completion{Content: content, TokensUsed: resp.Usage.TotalTokens}, nil
}
