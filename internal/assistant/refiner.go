// Package assistant condenses free-form product names into short retailer search terms.
package assistant

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You turn product names into short grocery search queries for Australian supermarkets.
Reply with the query only: brand, product and size. No quotes, no punctuation at the end.`

type Refiner interface {
	Refine(ctx context.Context, term string) (string, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIRefiner struct {
	client chatClient
	model  string
}

func NewOpenAIRefiner(apiKey string) *OpenAIRefiner {
	return &OpenAIRefiner{client: openai.NewClient(apiKey), model: openai.GPT4oMini}
}

// New returns nil when no key is configured.
func New(apiKey string) Refiner {
	if apiKey == "" {
		return nil
	}
	return NewOpenAIRefiner(apiKey)
}

func (r *OpenAIRefiner) Refine(ctx context.Context, term string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: term},
		},
		Temperature: 0,
		MaxTokens:   32,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant: empty completion")
	}

	out := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'.`)
	if out == "" {
		return "", errors.New("assistant: empty completion")
	}
	return out, nil
}
