package reasoning

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// Config targets any OpenAI-compatible chat-completions endpoint. Defaults
// point at Groq, which is what the shop runs in production.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama-3.3-70b-versatile"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1024"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: reasoning api key is required", contractx.ErrNotConfigured)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: reasoning model is required", contractx.ErrNotConfigured)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2]", contractx.ErrValidation)
	}
	return nil
}
