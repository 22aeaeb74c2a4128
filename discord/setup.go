package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/kingdom-of-science/senku-bot/ai"
	"github.com/kingdom-of-science/senku-bot/bmkg"
	"github.com/kingdom-of-science/senku-bot/data"
	"github.com/kingdom-of-science/senku-bot/database"
	"github.com/kingdom-of-science/senku-bot/logging"
)

// Intents the bot needs to read prefixed commands in guild channels.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// messenger is the part of *discordgo.Session the command handlers write through.
type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Forecaster fetches BMKG forecasts for an adm4 region code.
type Forecaster interface {
	Forecast(ctx context.Context, adm4 string) (*bmkg.Response, error)
}

// Deps are the backends the commands are served from.
type Deps struct {
	Store   *data.Store
	Weather Forecaster
	LLM     ai.Asker
	// ModelName is recorded alongside AI exchanges.
	ModelName string
	DB        database.CommandLogger
	Logger    *logging.Logger
}

type Client struct {
	Session  *discordgo.Session
	sender   messenger
	store    *data.Store
	weather  Forecaster
	llm      ai.Asker
	model    string
	db       database.CommandLogger
	logger   *logging.Logger
	commands map[string]commandHandler
}

// Setup creates the discord session, registers the message handlers and opens the
// gateway connection.
func Setup(token string, deps Deps) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = Intents

	c := newClient(session, deps)
	c.Session = session

	session.AddHandler(c.ready)
	session.AddHandler(c.messageCreate)

	// opens websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection to discord: %w", err)
	}
	return c, nil
}

func newClient(sender messenger, deps Deps) *Client {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	db := deps.DB
	if db == nil {
		db = database.Noop{}
	}
	store := deps.Store
	if store == nil {
		store = data.NewStore(nil, nil, nil)
	}

	c := &Client{
		sender:  sender,
		store:   store,
		weather: deps.Weather,
		llm:     deps.LLM,
		model:   deps.ModelName,
		db:      db,
		logger:  logger.WithComponent("discord"),
	}
	c.commands = c.makeCommandHandlers()
	return c
}

// Close closes the gateway connection.
func (d *Client) Close() error {
	if d.Session == nil {
		return nil
	}
	return d.Session.Close()
}

func (d *Client) ready(s *discordgo.Session, r *discordgo.Ready) {
	d.logger.Info("Kingdom of Science logged in", "user", r.User.String(), "guilds", len(r.Guilds))
}

func (d *Client) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	d.handleMessage(context.Background(), m.Message)
}
