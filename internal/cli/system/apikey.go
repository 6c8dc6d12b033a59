package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/keyring"
)

type APIKeyCmd struct {
	Set    APIKeySetCmd    `cmd:"" help:"Store the gateway API key in the OS keyring."`
	Delete APIKeyDeleteCmd `cmd:"" help:"Remove the gateway API key from the OS keyring."`
	Status APIKeyStatusCmd `cmd:"" help:"Show whether an API key is configured." default:"1"`
}

// APIKeySetCmd stores the gateway API key in the OS keyring
type APIKeySetCmd struct {
	Key string `arg:"" help:"API key issued by the ledger gateway."`
}

func (cmd *APIKeySetCmd) Run(ctx *cli.Context) error {
	if err := keyring.SetAPIKey(cmd.Key); err != nil {
		return err
	}
	ctx.Println("✓ API key stored in OS keyring")
	return nil
}

// APIKeyDeleteCmd removes the gateway API key from the OS keyring
type APIKeyDeleteCmd struct{}

func (cmd *APIKeyDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return err
	}
	ctx.Println("✓ API key deleted from OS keyring")
	return nil
}

// APIKeyStatusCmd reports keyring availability and where the key comes from
type APIKeyStatusCmd struct{}

func (cmd *APIKeyStatusCmd) Run(ctx *cli.Context) error {
	if env := strings.TrimSpace(os.Getenv(keyring.APIKeyEnv)); env != "" {
		ctx.Printf("✓ API key set via %s (%s)\n", keyring.APIKeyEnv, keyring.Mask(env))
	}

	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	key, err := keyring.GetAPIKey()
	switch {
	case err == nil:
		ctx.Printf("✓ API key stored in keyring (%s)\n", keyring.Mask(key))
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No API key stored; requests are sent anonymously")
	default:
		return fmt.Errorf("failed to read API key: %w", err)
	}
	return nil
}
