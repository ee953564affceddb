package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/keyring"
	"github.com/julianstephens/homebase/internal/kv/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Secret string `arg:"" enum:"weather,db" help:"Which secret to store: weather (OpenWeatherMap API key) or db (PostgreSQL connection string)."`
	Value  string `arg:"" help:"The secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	if secret == keyring.ConnectionString {
		if !postgres.IsConnString(cmd.Value) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	ctx.Printf("✓ %s stored in OS keyring\n", secret)
	if secret == keyring.ConnectionString {
		ctx.Println("  Use it with --store=keyring")
	}
	return nil
}

// KeyringGetCmd shows a stored secret, masked
type KeyringGetCmd struct {
	Secret string `arg:"" enum:"weather,db" help:"Which secret to show."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}
	v, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'homebase keyring set %s' to store one", secret, cmd.Secret)
		}
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	ctx.Println(keyring.Mask(v))
	return nil
}

type KeyringDeleteCmd struct {
	Secret string `arg:"" enum:"weather,db" help:"Which secret to delete."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	ctx.Printf("✓ %s deleted from OS keyring\n", secret)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")
	for _, s := range keyring.Secrets {
		if _, err := keyring.Get(s); err == nil {
			ctx.Printf("✓ %s is stored\n", s)
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("ℹ %s is not stored\n", s)
		}
	}
	return nil
}
