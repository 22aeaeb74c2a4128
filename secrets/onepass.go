// Package secrets fills credentials that are missing from the environment with
// values stored in 1Password.
package secrets

import (
	"context"
	"fmt"

	"github.com/1password/onepassword-sdk-go"
	"github.com/kingdom-of-science/senku-bot/config"
	"github.com/kingdom-of-science/senku-bot/logging"
)

// Resolver resolves op:// secret references.
type Resolver interface {
	Resolve(ctx context.Context, secretReference string) (string, error)
}

// Field is a credential that may be resolved from the vault.
type Field struct {
	Name     string
	Target   *string
	Required bool
}

// NewResolver creates a 1Password client authenticated with a service account token.
func NewResolver(ctx context.Context, token string) (Resolver, error) {
	client, err := onepassword.NewClient(
		ctx,
		onepassword.WithServiceAccountToken(token),
		onepassword.WithIntegrationInfo("Kingdom of Science Bot", "v1.0.0"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating 1password client: %w", err)
	}
	return client.Secrets(), nil
}

// Reference is the op:// reference for a credential named name in vault.
func Reference(vault, name string) string {
	return fmt.Sprintf("op://%s/%s/credential", vault, name)
}

// Fill resolves every field whose target is still empty. Failing to resolve a
// required field is an error; optional ones are skipped.
func Fill(ctx context.Context, r Resolver, vault string, fields []Field, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	for _, f := range fields {
		if *f.Target != "" {
			continue
		}
		value, err := r.Resolve(ctx, Reference(vault, f.Name))
		if err != nil {
			if f.Required {
				return fmt.Errorf("error resolving secret %s: %w", f.Name, err)
			}
			logger.Debug("optional secret not resolved", "name", f.Name, "error", err.Error())
			continue
		}
		*f.Target = value
	}
	return nil
}

// FillConfig resolves the bot's credentials that the environment left empty.
func FillConfig(ctx context.Context, r Resolver, cfg *config.Config, logger *logging.Logger) error {
	return Fill(ctx, r, cfg.OnePasswordVault, []Field{
		{Name: "DISCORD_TOKEN", Target: &cfg.DiscordToken, Required: true},
		{Name: "HUGGING_API", Target: &cfg.HuggingAPI},
		{Name: "HUGGING_API2", Target: &cfg.HuggingAPI2},
		{Name: "HUGGING_API3", Target: &cfg.HuggingAPI3},
		{Name: "POSTGRES_URL", Target: &cfg.PostgresURL},
	}, logger)
}
