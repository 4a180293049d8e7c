package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Default models used when configuration does not override them.
const (
	DefaultModel      = "gpt-4o"
	DefaultImageModel = "gpt-image-1"
)

// OpenAIClient implements Client and ImageClient using the official
// openai-go SDK: chat completions with a strict JSON-schema response
// format, and the images API for rendering.
type OpenAIClient struct {
	client     openai.Client
	model      string
	imageModel string
	baseURL    string
	httpClient *http.Client
}

// OpenAIOption configures OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the chat model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.model = model }
}

// WithImageModel sets the image model.
func WithImageModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.imageModel = model }
}

// WithBaseURL overrides the API base URL. Used to point the client at
// test servers or compatible gateways.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = url }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) { c.httpClient = hc }
}

// NewOpenAIClient creates a client for the given API key.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}

	c := &OpenAIClient{
		model:      DefaultModel,
		imageModel: DefaultImageModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}

	ropts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		ropts = append(ropts, option.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		ropts = append(ropts, option.WithHTTPClient(c.httpClient))
	}

	c.client = openai.NewClient(ropts...)
	return c, nil
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, task Task) ([]byte, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(task.System),
			openai.UserMessage(task.Prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   task.Schema.Name,
					Schema: task.Schema.Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", task.Agent, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s completion: empty choices", task.Agent)
	}

	return []byte(resp.Choices[0].Message.Content), nil
}

// GenerateImage implements ImageClient. One square image is requested
// and the base64 payload is decoded before returning.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(c.imageModel),
		Prompt: prompt,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("generate image: empty response data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}

// Compile-time interface checks.
var (
	_ Client      = (*OpenAIClient)(nil)
	_ ImageClient = (*OpenAIClient)(nil)
)
