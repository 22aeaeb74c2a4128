package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/kingdom-of-science/senku-bot/data"
	"github.com/kingdom-of-science/senku-bot/logging"
	"github.com/kingdom-of-science/senku-bot/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(sender *fakeSender, deps Deps) *Client {
	if deps.Logger == nil {
		deps.Logger = logging.NewLogger(logging.LogLevelError, nil)
	}
	return newClient(sender, deps)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		content string
		cmd     string
		args    []string
	}{
		{"bare command", "!ping", "ping", []string{}},
		{"lower cases command", "!PiNg", "ping", []string{}},
		{"args keep case", "!weather  Jakarta   Pusat ", "weather", []string{"Jakarta", "Pusat"}},
		{"prefix only", "!", "", nil},
		{"space after prefix", "! ping", "", []string{"ping"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseCommand(tt.content)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestHandleMessage_Ignored(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.Message
	}{
		{"no prefix", userMessage("ping")},
		{"prefix not first", userMessage(" !ping")},
		{"bot author", &discordgo.Message{Content: "!ping", Author: &discordgo.User{Bot: true}}},
		{"no author", &discordgo.Message{Content: "!ping"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			db := &fakeDB{}
			client := newTestClient(sender, Deps{DB: db})

			client.handleMessage(context.Background(), tt.msg)

			assert.Empty(t, sender.messages())
			assert.Empty(t, db.commands)
		})
	}
}

func TestHandleMessage_StaticCommands(t *testing.T) {
	store := data.NewStore([]string{"Ten billion percent!"}, []string{"Water expands when it freezes."}, nil)

	tests := []struct {
		name    string
		content string
		kind    string
		want    string
		outcome string
	}{
		{"ping", "!ping", "reply", "🏓 Pong! Kingdom of Science is online!", types.OutcomeOK},
		{"fact", "!fact", "send", "📘 **Science Fact:** Water expands when it freezes.", types.OutcomeOK},
		{"drstone", "!DrStone", "send", "🎌 Ten billion percent!", types.OutcomeOK},
		{"help", "!help", "reply", helpText, types.OutcomeOK},
		{"unknown", "!launch rocket", "reply", "⚙️ Unknown command. Try `!help`.", types.OutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			db := &fakeDB{}
			client := newTestClient(sender, Deps{Store: store, DB: db})

			client.handleMessage(context.Background(), userMessage(tt.content))

			msgs := sender.messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.kind, msgs[0].kind)
			assert.Equal(t, "chan-1", msgs[0].channelID)
			assert.Equal(t, tt.want, msgs[0].content)
			if tt.kind == "reply" {
				assert.Equal(t, "msg-1", msgs[0].replyTo)
			}

			require.Len(t, db.commands, 1)
			assert.Equal(t, tt.outcome, db.commands[0].Outcome)
			assert.Equal(t, "senku", db.commands[0].Username)
			assert.Equal(t, "guild-1", db.commands[0].GuildID)
		})
	}
}

func TestHandleMessage_EmptyStore(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(sender, Deps{Store: data.NewStore(nil, nil, nil)})

	client.handleMessage(context.Background(), userMessage("!fact"))
	client.handleMessage(context.Background(), userMessage("!drstone"))

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "⚙️ No facts available yet.", msgs[0].content)
	assert.Equal(t, "reply", msgs[0].kind)
	assert.Equal(t, "⚙️ No quotes available yet.", msgs[1].content)
}

func TestHandleMessage_RecordsUnknownUnderOneLabel(t *testing.T) {
	db := &fakeDB{}
	client := newTestClient(&fakeSender{}, Deps{DB: db})

	client.handleMessage(context.Background(), userMessage("!whatever now"))

	require.Len(t, db.commands, 1)
	assert.Equal(t, unknownCommand, db.commands[0].Command)
	assert.Equal(t, "now", db.commands[0].Args)
}

func TestHandleMessage_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errSend}
	db := &fakeDB{}
	client := newTestClient(sender, Deps{DB: db})

	client.handleMessage(context.Background(), userMessage("!ping"))

	require.Len(t, db.commands, 1)
	assert.Equal(t, types.OutcomeSendErr, db.commands[0].Outcome)
}

func TestHandleMessage_DatabaseErrorDoesNotBreakReply(t *testing.T) {
	sender := &fakeSender{}
	db := &fakeDB{err: assert.AnError}
	client := newTestClient(sender, Deps{DB: db})

	client.handleMessage(context.Background(), userMessage("!ping"))

	assert.Len(t, sender.messages(), 1)
}

func TestNewClient_Defaults(t *testing.T) {
	client := newClient(&fakeSender{}, Deps{})
	assert.NotNil(t, client.db)
	assert.NotNil(t, client.store)
	assert.NotNil(t, client.logger)
	assert.NoError(t, client.Close())
}
