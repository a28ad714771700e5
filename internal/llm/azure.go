package llm

import (
	"context"
	"errors"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
	"github.com/AnthonyAugust/meu-agente-tests/internal/prompt"
)

// MaxTokens caps the length of a generated test file.
const MaxTokens = 1200

// requestModel is the model name go-openai validates the request against.
// Azure routes by deployment, so it never reaches the URL.
const requestModel = openai.GPT4o

// AzureClient implements Client for an Azure OpenAI chat deployment.
type AzureClient struct {
	client     *openai.Client
	deployment string
	logger     *zap.Logger
}

// NewAzureClient creates a client for cfg. The deployment ID is used in the
// request path exactly as configured, whatever model name it resembles.
func NewAzureClient(cfg config.AzureConfig, logger *zap.Logger) *AzureClient {
	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	oc.APIVersion = cfg.APIVersion
	oc.AzureModelMapperFunc = func(string) string { return cfg.Deployment }

	if logger == nil {
		logger = zap.NewNop()
	}
	return &AzureClient{
		client:     openai.NewClientWithConfig(oc),
		deployment: cfg.Deployment,
		logger:     logger,
	}
}

// Complete issues one chat completion request. There is no retry.
func (c *AzureClient) Complete(ctx context.Context, userPrompt string) (string, error) {
	start := time.Now()
	c.logger.Debug("chat completion request",
		zap.String("deployment", c.deployment),
		zap.Int("prompt_len", len(userPrompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: requestModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: MaxTokens,
		// Temperature is tagged json:"temperature,omitempty", so 0 would be dropped.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", &RemoteCallError{Op: "chat completion", StatusCode: statusCode(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &RemoteCallError{Op: "chat completion", Err: ErrNoChoices}
	}

	content := resp.Choices[0].Message.Content
	c.logger.Info("chat completion finished",
		zap.String("deployment", c.deployment),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_len", len(content)),
	)
	return content, nil
}

// statusCode digs the HTTP status out of go-openai's error types.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
