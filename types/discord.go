package types

import (
	"time"

	"github.com/google/uuid"
)

// Command outcomes recorded in the command log.
const (
	OutcomeOK          = "ok"
	OutcomeBadRequest  = "bad_request"
	OutcomeNotFound    = "not_found"
	OutcomeUpstreamErr = "upstream_error"
	OutcomeSendErr     = "send_error"
	OutcomeUnknown     = "unknown_command"
)

// CommandRecord is one prefixed command received from Discord.
type CommandRecord struct {
	ID        uuid.UUID `db:"id"`
	Command   string    `db:"command"`
	Args      string    `db:"args"`
	Username  string    `db:"username"`
	UserID    string    `db:"user_id"`
	ChannelID string    `db:"channel_id"`
	GuildID   string    `db:"guild_id"`
	Outcome   string    `db:"outcome"`
	CreatedAt time.Time `db:"created_at"`
}

// AIExchange is a prompt relayed to the model and what came back.
type AIExchange struct {
	ID        uuid.UUID `db:"id"`
	CommandID uuid.UUID `db:"command_id"`
	Prompt    string    `db:"prompt"`
	Response  string    `db:"response"`
	Model     string    `db:"model"`
	Failed    bool      `db:"failed"`
	CreatedAt time.Time `db:"created_at"`
}
