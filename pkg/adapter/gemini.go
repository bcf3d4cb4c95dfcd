package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
	"google.golang.org/genai"
)

const (
	DefaultGenerativeModel = "gemini-2.5-flash"
	DefaultTemperature     = 0.9
	DefaultMaxOutputTokens = 4096
)

type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Complete(ctx context.Context, prompt string) (string, error)
	ListModels(ctx context.Context) ([]*genai.Model, error)
}

type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	temperature     float32
	maxOutputTokens int32
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithTemperature(temperature float32) GeminiOption {
	return func(g *GeminiClient) {
		g.temperature = temperature
	}
}

func WithMaxOutputTokens(n int32) GeminiOption {
	return func(g *GeminiClient) {
		g.maxOutputTokens = n
	}
}

// NewGemini creates a client for the Gemini API using an API key
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	return newGemini(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, opts...)
}

// NewVertexGemini creates a client for Gemini on Vertex AI
func NewVertexGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	return newGemini(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}, opts...)
}

func newGemini(ctx context.Context, cfg *genai.ClientConfig, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: DefaultGenerativeModel,
		temperature:     DefaultTemperature,
		maxOutputTokens: DefaultMaxOutputTokens,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", g.generativeModel))
	}
	return resp, nil
}

// Complete sends a single-turn prompt with the configured sampling settings
// and returns the text of the first candidate
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}

	resp, err := g.GenerateContent(ctx, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}

	usage := ResponseUsage(g.generativeModel, resp)
	logging.From(ctx).Info("gemini completion",
		"model", usage.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
	)

	text := ResponseText(resp)
	if text == "" {
		return "", goerr.New("gemini returned empty response", goerr.V("model", g.generativeModel))
	}
	return text, nil
}

// ListModels returns every model visible to the client
func (g *GeminiClient) ListModels(ctx context.Context) ([]*genai.Model, error) {
	var models []*genai.Model
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list models")
		}
		models = append(models, m)
	}
	return models, nil
}

// ResponseText concatenates the text parts of the first candidate
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// ResponseUsage extracts token counts from a response
func ResponseUsage(modelName string, resp *genai.GenerateContentResponse) model.Usage {
	usage := model.Usage{Model: modelName}
	if resp == nil || resp.UsageMetadata == nil {
		return usage
	}

	usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
	usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	return usage
}
