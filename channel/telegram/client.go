package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	contractx "github.com/boluade/shopmate/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	BotToken string        `envconfig:"BOT_TOKEN" split_words:"true" required:"true"`
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.telegram.org"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Client talks to the Telegram Bot API. The conversation id is the
// channel-native chat id, passed through as a string.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, fmt.Errorf("%w: telegram bot token is required", contractx.ErrNotConfigured)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("telegram base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

var _ contractx.Dispatcher = (*Client)(nil)

func (c *Client) SendText(ctx context.Context, conversationID string, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: conversationID,
		Text:   text,
	})
}

// SendStatus emits the transient "typing" indicator. Telegram clears it on
// the next sendMessage, so there is nothing to undo.
func (c *Client) SendStatus(ctx context.Context, conversationID string, kind contractx.StatusKind) error {
	if kind != contractx.StatusTyping {
		return nil
	}
	return c.call(ctx, "sendChatAction", sendChatActionRequest{
		ChatID: conversationID,
		Action: "typing",
	})
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: execute %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram: decode %s response status=%d: %w", method, resp.StatusCode, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram: %s rejected: %s", method, parsed.Description)
	}
	return nil
}
