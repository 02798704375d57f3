package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	contractx "github.com/boluade/shopmate/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	AccessToken   string        `envconfig:"ACCESS_TOKEN" split_words:"true" required:"true"`
	PhoneNumberID string        `envconfig:"PHONE_NUMBER_ID" split_words:"true" required:"true"`
	VerifyToken   string        `envconfig:"VERIFY_TOKEN" split_words:"true" required:"true"`
	BaseURL       string        `envconfig:"BASE_URL" split_words:"true" default:"https://graph.facebook.com/v18.0"`
	Timeout       time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Client sends messages through the WhatsApp Business Cloud API. The
// conversation id is the sender's phone number as delivered in the webhook.
type Client struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: whatsapp access token is required", contractx.ErrNotConfigured)
	}
	phoneNumberID := strings.TrimSpace(cfg.PhoneNumberID)
	if phoneNumberID == "" {
		return nil, fmt.Errorf("%w: whatsapp phone number id is required", contractx.ErrNotConfigured)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

var _ contractx.Dispatcher = (*Client)(nil)

func (c *Client) SendText(ctx context.Context, conversationID string, text string) error {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               conversationID,
		Type:             "text",
		Text:             sendText{Body: text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: execute send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("whatsapp: read send response: %w", err)
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("whatsapp: decode send response status=%d: %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("whatsapp: send rejected code=%d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("whatsapp: send failed with status=%d", resp.StatusCode)
	}
	return nil
}

// SendStatus is a no-op; the Cloud API has no free-standing typing
// indicator for business-initiated sends.
func (c *Client) SendStatus(ctx context.Context, conversationID string, kind contractx.StatusKind) error {
	return nil
}
