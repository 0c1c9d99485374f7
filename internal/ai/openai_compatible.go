package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds the whole HTTP exchange. Zero leaves it to the transport.
	Timeout time.Duration
}

// OpenAICompatibleClient talks to any /chat/completions endpoint. The API key
// is supplied per call because it belongs to the end user, not the process.
type OpenAICompatibleClient struct {
	cfg        ChatConfig
	httpClient *http.Client
}

func NewOpenAICompatibleClient(cfg ChatConfig) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete sends one non-streaming completion. Failures are always returned
// as *CompletionError.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, apiKey string, messages []ChatMessage) (string, error) {
	clientCfg := openai.DefaultConfig(apiKey)
	if c.cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(clientCfg)

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(fmt.Errorf("llm request failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
