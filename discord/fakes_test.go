package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/kingdom-of-science/senku-bot/bmkg"
	"github.com/kingdom-of-science/senku-bot/types"
)

type sentMessage struct {
	kind      string // reply, send or embed
	channelID string
	content   string
	replyTo   string
	embed     *discordgo.MessageEmbed
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) record(m sentMessage) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, m)
	return &discordgo.Message{ChannelID: m.channelID, Content: m.content}, nil
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(sentMessage{kind: "send", channelID: channelID, content: content})
}

func (f *fakeSender) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(sentMessage{kind: "reply", channelID: channelID, content: content, replyTo: reference.MessageID})
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(sentMessage{kind: "embed", channelID: channelID, embed: embed})
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeAsker struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeAsker) Ask(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

type fakeForecaster struct {
	resp  *bmkg.Response
	err   error
	codes []string
}

func (f *fakeForecaster) Forecast(ctx context.Context, adm4 string) (*bmkg.Response, error) {
	f.codes = append(f.codes, adm4)
	return f.resp, f.err
}

// fakeDB mirrors the foreign key from ai_exchanges to discord_commands.
type fakeDB struct {
	mu        sync.Mutex
	commands  []types.CommandRecord
	exchanges []types.AIExchange
	err       error
}

func (f *fakeDB) InsertCommand(ctx context.Context, record types.CommandRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, record)
	return nil
}

func (f *fakeDB) InsertAIExchange(ctx context.Context, exchange types.AIExchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, c := range f.commands {
		if c.ID == exchange.CommandID {
			f.exchanges = append(f.exchanges, exchange)
			return nil
		}
	}
	return fmt.Errorf("insert ai exchange: command %s does not exist", exchange.CommandID)
}

var errSend = errors.New("missing permissions")

func userMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   content,
		Author:    &discordgo.User{ID: "user-1", Username: "senku"},
	}
}
