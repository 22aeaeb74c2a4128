package database

import (
	"context"
	"fmt"

	"github.com/kingdom-of-science/senku-bot/types"
)

// CommandLogger records handled commands and relayed AI prompts.
type CommandLogger interface {
	InsertCommand(ctx context.Context, record types.CommandRecord) error
	InsertAIExchange(ctx context.Context, exchange types.AIExchange) error
}

// InsertCommand inserts a CommandRecord into the database.
func (p *Postgres) InsertCommand(ctx context.Context, record types.CommandRecord) error {
	query := "INSERT INTO discord_commands (id, command, args, username, user_id, channel_id, guild_id, outcome, created_at) VALUES (:id, :command, :args, :username, :user_id, :channel_id, :guild_id, :outcome, :created_at)"
	_, err := p.connections.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("error inserting discord command: %w", err)
	}
	return nil
}

// InsertAIExchange inserts an AIExchange into the database.
func (p *Postgres) InsertAIExchange(ctx context.Context, exchange types.AIExchange) error {
	query := "INSERT INTO ai_exchanges (id, command_id, prompt, response, model, failed, created_at) VALUES (:id, :command_id, :prompt, :response, :model, :failed, :created_at)"
	_, err := p.connections.NamedExecContext(ctx, query, exchange)
	if err != nil {
		return fmt.Errorf("error inserting ai exchange: %w", err)
	}
	return nil
}

// CommandCounts returns how often each command was used since the log started.
func (p *Postgres) CommandCounts(ctx context.Context) (map[string]int, error) {
	rows, err := p.connections.QueryxContext(ctx, "SELECT command, COUNT(*) FROM discord_commands GROUP BY command")
	if err != nil {
		return nil, fmt.Errorf("error counting discord commands: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var command string
		var n int
		if err := rows.Scan(&command, &n); err != nil {
			return nil, fmt.Errorf("error scanning discord command counts: %w", err)
		}
		counts[command] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning discord command counts: %w", err)
	}
	return counts, nil
}

// Noop discards every record. It is used when no database is configured.
type Noop struct{}

func (Noop) InsertCommand(context.Context, types.CommandRecord) error { return nil }

func (Noop) InsertAIExchange(context.Context, types.AIExchange) error { return nil }
