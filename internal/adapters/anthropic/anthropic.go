// Package anthropic adapts the Anthropic Messages API to corpus.LLM.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/paperforge/paperforge-core/internal/corpus"
)

// Client wraps the Anthropic SDK behind corpus.LLM.
type Client struct {
	client       sdk.Client
	defaultModel string
}

// New builds a Client authenticated with apiKey. defaultModel is used when
// a call's CompletionOptions.Model is empty.
func New(apiKey, defaultModel string) *Client {
	if defaultModel == "" {
		defaultModel = "claude-sonnet-4-5-20250929"
	}
	return &Client{
		client:       sdk.NewClient(option.WithAPIKey(apiKey)),
		defaultModel: defaultModel,
	}
}

// Complete sends prompt as a single user message and returns the
// concatenated text content of the response.
func (c *Client) Complete(ctx context.Context, prompt string, opts corpus.CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if opts.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: opts.SystemPrompt}}
	}
	if opts.Temperature > 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

var _ corpus.LLM = (*Client)(nil)
