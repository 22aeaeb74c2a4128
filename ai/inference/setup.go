// Package inference implements ai.Asker on the Hugging Face inference router, which
// speaks the OpenAI chat completion API.
package inference

import (
	"fmt"
	"sync/atomic"

	"github.com/kingdom-of-science/senku-bot/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "meta-llama/Llama-3.1-8B-Instruct"
	maxTokens      = 512
)

// Bot relays prompts to the model, rotating through one client per API key.
type Bot struct {
	models    []llms.Model
	next      atomic.Uint64
	modelName string
	logger    *logging.Logger
}

// Setup creates one OpenAI-compatible client per API key. At least one key is
// required.
func Setup(keys []string, baseURL, modelName string, logger *logging.Logger) (*Bot, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one inference API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	logger.Info("setting up inference client", "model", modelName, "baseURL", baseURL, "keys", len(keys))

	models := make([]llms.Model, 0, len(keys))
	for i, key := range keys {
		llm, err := openai.New(
			openai.WithBaseURL(baseURL),
			openai.WithToken(key),
			openai.WithModel(modelName),
		)
		if err != nil {
			logger.Error("failed to create inference client", "error", err.Error(), "key", i+1)
			return nil, fmt.Errorf("failed to create inference client %d: %w", i+1, err)
		}
		models = append(models, llm)
	}

	return newBot(models, modelName, logger), nil
}

func newBot(models []llms.Model, modelName string, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default()
	}
	return &Bot{
		models:    models,
		modelName: modelName,
		logger:    logger,
	}
}

// ModelName is the model prompts are sent to.
func (b *Bot) ModelName() string {
	return b.modelName
}

// pick returns the next client in rotation and its position.
func (b *Bot) pick() (llms.Model, int) {
	i := int((b.next.Add(1) - 1) % uint64(len(b.models)))
	return b.models[i], i
}
