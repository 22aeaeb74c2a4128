package discord

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kingdom-of-science/senku-bot/ai"
	"github.com/kingdom-of-science/senku-bot/types"
)

const (
	askTimeout = 60 * time.Second
	// Replies longer than this are sent in chunks.
	longReplyThreshold = 1800
	// Discord allows 2000 characters per message.
	maxChunkLength = 1999
)

var errNoModel = errors.New("no inference keys configured")

func (d *Client) askAI(ctx context.Context, req *request) string {
	if len(req.args) == 0 {
		return d.replyOutcome(req, "💬 Please ask me something, e.g. `!askai Why does Jakarta flood often?`", types.OutcomeBadRequest)
	}

	prompt := strings.Join(req.args, " ")
	if sent := d.send(req, "🤖 Thinking with science..."); sent != types.OutcomeOK {
		d.logger.Warn("could not post thinking message, asking anyway", "requestID", req.id)
	}

	askCtx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()

	outcome := types.OutcomeOK
	answer, err := "", errNoModel
	if d.llm != nil {
		answer, err = d.llm.Ask(askCtx, prompt)
	}
	if err != nil {
		d.logger.Error("AI error", "error", err.Error(), "requestID", req.id)
		answer = ai.FailedResponse
		outcome = types.OutcomeUpstreamErr
	}

	// written by handleMessage once the command row exists
	req.exchange = &types.AIExchange{
		ID:        uuid.New(),
		CommandID: req.id,
		Prompt:    prompt,
		Response:  answer,
		Model:     d.model,
		Failed:    err != nil,
		CreatedAt: time.Now(),
	}

	if utf8.RuneCountInString(answer) > longReplyThreshold {
		for _, chunk := range SplitMessage("💬 **AI (truncated to fit Discord limits):** "+answer, maxChunkLength) {
			if sent := d.send(req, chunk); sent != types.OutcomeOK {
				return sent
			}
		}
		return outcome
	}

	if sent := d.send(req, "💬 **AI:** "+answer); sent != types.OutcomeOK {
		return sent
	}
	return outcome
}

// SplitMessage cuts text into pieces of at most size runes. Joining the pieces
// gives back text.
func SplitMessage(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
