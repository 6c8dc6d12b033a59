package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing local database before initialization."`
	// ConfigPath is filled from the global --config flag
	ConfigPath string `kong:"-"`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if storage.IsPostgres(dbPath) || dbPath == "postgresql" {
			return fmt.Errorf("--force only resets local SQLite databases")
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := safetyCopy(ctx, "init"); err != nil {
				return err
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized pledge storage at: %s\n", ctx.Store.GetConfigPath())

	if c.ConfigPath != "" {
		written, err := config.Write(c.ConfigPath, ctx.Config)
		if err != nil {
			return err
		}
		if written {
			ctx.Printf("Wrote default configuration to: %s\n", config.ExpandHome(c.ConfigPath))
		}
	}
	if ctx.Config.ContractAddress == "" {
		ctx.Println("Set contract_address in the config file (or PLEDGE_CONTRACT_ADDRESS) before using the ledger.")
	}
	return nil
}
