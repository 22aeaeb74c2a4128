package inference

import (
	"context"
	"fmt"

	"github.com/kingdom-of-science/senku-bot/ai"
	"github.com/kingdom-of-science/senku-bot/metrics"
	"github.com/tmc/langchaingo/llms"
)

// Ask sends prompt as a single user message. An empty answer is replaced with
// ai.EmptyResponse; transport and API failures are returned as errors.
func (b *Bot) Ask(ctx context.Context, prompt string) (string, error) {
	llm, key := b.pick()
	b.logger.Debug("calling inference API", "model", b.modelName, "key", key+1, "promptLength", len(prompt))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := llm.GenerateContent(ctx, messages,
		llms.WithModel(b.modelName),
		llms.WithMaxTokens(maxTokens),
		llms.WithCandidateCount(1))
	if err != nil {
		b.logger.Error("failed to get inference response", "error", err.Error(), "key", key+1)
		metrics.FailedLLMGenCount.Add(1)
		return "", fmt.Errorf("failed to get llm response: %w", err)
	}

	var text string
	if resp != nil && len(resp.Choices) > 0 && resp.Choices[0] != nil {
		text = ai.CleanResponse(resp.Choices[0].Content)
	}
	if text == "" {
		b.logger.Warn("empty response from inference API", "key", key+1)
		metrics.EmptyLLMResponseCount.Add(1)
		return ai.EmptyResponse, nil
	}

	b.logger.Debug("received inference response", "responseLength", len(text))
	metrics.SuccessfulLLMGenCount.Add(1)
	return text, nil
}
