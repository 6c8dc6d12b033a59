package system

import (
	"os"

	"github.com/julianstephens/stackspledge/internal/backup"
	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/storage"
)

// safetyCopy backs up a local SQLite database before it is rewritten.
// PostgreSQL targets are left to the server's own backups.
func safetyCopy(ctx *cli.Context, reason string) error {
	path := ctx.Store.GetConfigPath()
	if storage.IsPostgres(path) || path == "postgresql" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	dest, err := backup.NewManager(path).Create(reason)
	if err != nil {
		return err
	}
	if dest != "" {
		ctx.Printf("Backed up existing database to: %s\n", dest)
	}
	return nil
}
