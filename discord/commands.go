package discord

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/kingdom-of-science/senku-bot/metrics"
	"github.com/kingdom-of-science/senku-bot/types"
)

// Prefix marks a chat message as a bot command.
const Prefix = "!"

const unknownCommand = "unknown"

// request is one parsed command invocation.
type request struct {
	id   uuid.UUID
	name string
	msg  *discordgo.Message
	args []string
	// exchange is set by askai and stored after the command record.
	exchange *types.AIExchange
}

// commandHandler serves a request and returns its outcome for the command log.
type commandHandler func(ctx context.Context, req *request) string

func (d *Client) makeCommandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"ping":    d.ping,
		"weather": d.weatherCommand,
		"askai":   d.askAI,
		"fact":    d.fact,
		"drstone": d.drStone,
		"help":    d.help,
	}
}

// ParseCommand splits a prefixed message into its lower-cased command and the
// whitespace separated arguments. Whitespace directly after the prefix yields an
// empty command.
func ParseCommand(content string) (string, []string) {
	rest := strings.TrimPrefix(strings.TrimSpace(content), Prefix)
	if rest == "" {
		return "", nil
	}
	fields := strings.Fields(rest)
	if unicode.IsSpace([]rune(rest)[0]) {
		return "", fields
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// handleMessage dispatches a prefixed message from a human to its command.
func (d *Client) handleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || !strings.HasPrefix(m.Content, Prefix) {
		return
	}
	metrics.DiscordMessageReceived.Add(1)

	name, args := ParseCommand(m.Content)
	handler, ok := d.commands[name]
	label := name
	if !ok {
		handler = d.unknown
		label = unknownCommand
	}

	req := &request{id: uuid.New(), name: label, msg: m, args: args}

	start := time.Now()
	metrics.DiscordCommandTotal.WithLabelValues(label).Inc()
	outcome := handler(ctx, req)
	metrics.DiscordCommandDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if outcome == types.OutcomeUpstreamErr || outcome == types.OutcomeSendErr {
		metrics.DiscordCommandErrors.WithLabelValues(label).Inc()
	}
	d.logger.Debug("command handled", "command", label, "outcome", outcome, "requestID", req.id)

	err := d.db.InsertCommand(ctx, types.CommandRecord{
		ID:        req.id,
		Command:   label,
		Args:      strings.Join(args, " "),
		Username:  m.Author.Username,
		UserID:    m.Author.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Outcome:   outcome,
		CreatedAt: start,
	})
	if err != nil {
		d.handleDBerror(err)
		return
	}
	if req.exchange != nil {
		d.handleDBerror(d.db.InsertAIExchange(ctx, *req.exchange))
	}
}

func (d *Client) handleDBerror(err error) {
	if err != nil {
		d.logger.Error("error writing to database", "error", err.Error())
	}
}

// reply answers the command message directly.
func (d *Client) reply(req *request, content string) string {
	_, err := d.sender.ChannelMessageSendReply(req.msg.ChannelID, content, req.msg.Reference())
	if err != nil {
		d.logger.Error("error replying to command", "error", err.Error(), "command", req.name, "channelID", req.msg.ChannelID)
		return types.OutcomeSendErr
	}
	metrics.DiscordMessageSent.Add(1)
	return types.OutcomeOK
}

// send posts content to the command's channel.
func (d *Client) send(req *request, content string) string {
	_, err := d.sender.ChannelMessageSend(req.msg.ChannelID, content)
	if err != nil {
		d.logger.Error("error sending message to channel", "error", err.Error(), "command", req.name, "channelID", req.msg.ChannelID)
		return types.OutcomeSendErr
	}
	metrics.DiscordMessageSent.Add(1)
	return types.OutcomeOK
}

// replyOutcome replies and reports outcome unless the reply itself failed.
func (d *Client) replyOutcome(req *request, content, outcome string) string {
	if sent := d.reply(req, content); sent != types.OutcomeOK {
		return sent
	}
	return outcome
}

func (d *Client) ping(ctx context.Context, req *request) string {
	return d.reply(req, "🏓 Pong! Kingdom of Science is online!")
}

func (d *Client) fact(ctx context.Context, req *request) string {
	fact, ok := d.store.RandomFact()
	if !ok {
		return d.replyOutcome(req, "⚙️ No facts available yet.", types.OutcomeNotFound)
	}
	return d.send(req, "📘 **Science Fact:** "+fact)
}

func (d *Client) drStone(ctx context.Context, req *request) string {
	quote, ok := d.store.RandomQuote()
	if !ok {
		return d.replyOutcome(req, "⚙️ No quotes available yet.", types.OutcomeNotFound)
	}
	return d.send(req, "🎌 "+quote)
}

const helpText = "🧪 **Kingdom of Science commands**\n" +
	"`!ping` check that the bot is online\n" +
	"`!weather <city>` BMKG forecast for a city or village\n" +
	"`!askai <question>` ask the AI anything\n" +
	"`!fact` a random science fact\n" +
	"`!drstone` a Dr. Stone quote\n" +
	"`!help` this message"

func (d *Client) help(ctx context.Context, req *request) string {
	return d.reply(req, helpText)
}

func (d *Client) unknown(ctx context.Context, req *request) string {
	return d.replyOutcome(req, "⚙️ Unknown command. Try `!help`.", types.OutcomeUnknown)
}
