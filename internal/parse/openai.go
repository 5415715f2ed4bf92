package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/habitcards/assistant/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// TierGenerative names the secondary remote tier.
	TierGenerative = "generative"

	// DefaultGenerativeModel is the default model to use
	DefaultGenerativeModel = "gpt-4o-mini"
	// DefaultGenerativeBaseURL is the default API base URL
	DefaultGenerativeBaseURL = "https://api.openai.com/v1"
	// GenerativeTimeout bounds one secondary-tier attempt. Shorter than the
	// backend tier so an offline session degrades quickly to the local tier.
	GenerativeTimeout = 10 * time.Second

	// generativeTemperature keeps sampling near-deterministic for schema output
	generativeTemperature = 0.1

	// errNoChoicesInResponse is returned when the API response has no choices
	errNoChoicesInResponse = "no choices in response"
)

// GenerativeTier parses transcripts with a generative-model backend, sending
// a mode-specific instruction that embeds the exact output schema.
type GenerativeTier struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewGenerativeTier creates the secondary remote tier.
func NewGenerativeTier(apiKey string, model string) *GenerativeTier {
	return NewGenerativeTierWithLogger(apiKey, DefaultGenerativeBaseURL, model, nil, false)
}

// NewGenerativeTierWithLogger creates the secondary remote tier with logger support.
func NewGenerativeTierWithLogger(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *GenerativeTier {
	if model == "" {
		model = DefaultGenerativeModel
	}
	if baseURL == "" {
		baseURL = DefaultGenerativeBaseURL
	}

	httpClient := &http.Client{
		Timeout: GenerativeTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &GenerativeTier{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

func (t *GenerativeTier) Name() string { return TierGenerative }

func (t *GenerativeTier) Parse(ctx context.Context, mode models.Mode, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, GenerativeTimeout)
	defer cancel()

	prompt := BuildPrompt(mode, text)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("Respond with valid JSON only, matching the requested schema exactly."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(t.model),
		Messages:    messages,
		Temperature: openai.Float(generativeTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if t.logger != nil && t.debugMode {
		t.logger.Debug("llm_api_request",
			zap.String("operation", "parse_transcript"),
			zap.String("mode", mode.String()),
			zap.String("model", t.model),
			zap.Int("prompt_length", len(prompt)),
		)
	}

	start := time.Now()
	resp, err := t.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if t.logger != nil && t.debugMode {
			t.logger.Debug("llm_api_error",
				zap.String("operation", "parse_transcript"),
				zap.String("mode", mode.String()),
				zap.String("model", t.model),
				zap.Error(err),
				zap.Duration("latency", latency),
			)
		}
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if t.logger != nil && t.debugMode {
		t.logger.Debug("llm_api_response",
			zap.String("operation", "parse_transcript"),
			zap.String("mode", mode.String()),
			zap.String("model", t.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return Decode(mode, salvageJSON(content))
}

// salvageJSON trims any prose around the outermost JSON object. Some models
// wrap the object in markdown fences despite the response-format hint.
func salvageJSON(content string) []byte {
	raw := []byte(content)
	if len(raw) > 0 && raw[0] != '{' {
		start := bytes.Index(raw, []byte("{"))
		end := bytes.LastIndex(raw, []byte("}"))
		if start != -1 && end != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}
