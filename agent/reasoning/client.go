package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// Client enforces the structured-output contract on top of the completion
// endpoint: one attempt per inbound message, strict JSON-object response,
// intent restricted to the enumerated set.
type Client struct {
	sdk         *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	sdk := openaisdk.NewClient(opts...)
	return &Client{
		sdk:         &sdk,
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxCompletionToken,
	}, nil
}

var _ contractx.Reasoner = (*Client)(nil)

// decisionWire is the second-level JSON object embedded in the completion
// content. Parsed separately from ModelDecision so that validation happens
// before anything escapes this package.
type decisionWire struct {
	Intent    string `json:"intent"`
	Reply     string `json:"reply"`
	ProductID *int64 `json:"product_id"`
}

func (c *Client) Decide(ctx context.Context, turns []contractx.Turn) (contractx.ModelDecision, error) {
	if len(turns) == 0 {
		return contractx.ModelDecision{}, fmt.Errorf("%w: empty turn list", contractx.ErrValidation)
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case contractx.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(t.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(t.Content))
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(t.Content))
		default:
			return contractx.ModelDecision{}, fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, t.Role)
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    messages,
		Temperature: openaisdk.Float(c.temperature),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(c.maxTokens))
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.ModelDecision{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return contractx.ModelDecision{}, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}

	return parseDecision(completion.Choices[0].Message.Content)
}

func parseDecision(content string) (contractx.ModelDecision, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return contractx.ModelDecision{}, fmt.Errorf("%w: completion content is empty", contractx.ErrSchemaViolation)
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return contractx.ModelDecision{}, fmt.Errorf("%w: decode decision: %v", contractx.ErrSchemaViolation, err)
	}

	intent := contractx.Intent(strings.TrimSpace(wire.Intent))
	if !intent.Valid() {
		return contractx.ModelDecision{}, fmt.Errorf("%w: unknown intent %q", contractx.ErrSchemaViolation, wire.Intent)
	}

	reply := strings.TrimSpace(wire.Reply)
	if reply == "" {
		return contractx.ModelDecision{}, fmt.Errorf("%w: reply is empty", contractx.ErrSchemaViolation)
	}

	return contractx.ModelDecision{
		Intent:    intent,
		Reply:     reply,
		ProductID: wire.ProductID,
	}, nil
}
