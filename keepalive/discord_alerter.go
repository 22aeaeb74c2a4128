package keepalive

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/kingdom-of-science/senku-bot/logging"
)

// channelSender is the part of *discordgo.Session the alerter uses.
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAlerter posts alerts to a fixed channel over the bot's own session.
type DiscordAlerter struct {
	session   channelSender
	channelID string
	logger    *logging.Logger
}

// NewDiscordAlerter creates an alerter for channelID.
func NewDiscordAlerter(session channelSender, channelID string, logger *logging.Logger) (*DiscordAlerter, error) {
	if channelID == "" {
		return nil, fmt.Errorf("alert channel id cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DiscordAlerter{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}, nil
}

// SendAlert sends an alert message to the configured Discord channel
func (da *DiscordAlerter) SendAlert(ctx context.Context, serviceName string, message string) error {
	alertMessage := fmt.Sprintf("🚨 **Alert:** %s", message)

	_, err := da.session.ChannelMessageSend(da.channelID, alertMessage, discordgo.WithContext(ctx))
	if err != nil {
		da.logger.Error("failed to send Discord alert",
			"error", err.Error(),
			"service", serviceName,
			"channel_id", da.channelID)
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	da.logger.Info("Discord alert sent",
		"service", serviceName,
		"channel_id", da.channelID)
	return nil
}
