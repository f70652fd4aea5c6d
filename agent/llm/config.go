package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	statex "github.com/kritsadaw/tripdesk/agent/state"
	groqx "github.com/kritsadaw/tripdesk/pkg/groq"
)

// Config carries the shared model settings plus per-leg overrides.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	FlightModel       string  `envconfig:"FLIGHT_MODEL" split_words:"true"`
	CabModel          string  `envconfig:"CAB_MODEL" split_words:"true"`
	FlightTemperature float32 `envconfig:"FLIGHT_TEMPERATURE" split_words:"true" default:"-1"`
	CabTemperature    float32 `envconfig:"CAB_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: groq api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// GroqFor resolves the model config for one leg's agent, applying overrides.
func (c Config) GroqFor(leg statex.Leg) groqx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch leg {
	case statex.LegFlight:
		if v := strings.TrimSpace(c.FlightModel); v != "" {
			modelName = v
		}
		if c.FlightTemperature >= 0 {
			temp = c.FlightTemperature
		}
	case statex.LegCab:
		if v := strings.TrimSpace(c.CabModel); v != "" {
			modelName = v
		}
		if c.CabTemperature >= 0 {
			temp = c.CabTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return groqx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
