package system

import (
	"fmt"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/migration"
)

// Migrator is implemented by the SQL-backed stores
type Migrator interface {
	MigrationStatus() (migration.Status, error)
	Migrate(logFn func(string)) (int, error)
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(Migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	if c.Status {
		status, err := m.MigrationStatus()
		if err != nil {
			return err
		}
		ctx.Printf("Schema version %d of %d (%d pending)\n", status.Current, status.Latest, len(status.Pending))
		return nil
	}

	status, err := m.MigrationStatus()
	if err != nil {
		return err
	}
	if len(status.Pending) > 0 {
		if err := safetyCopy(ctx, "migrate"); err != nil {
			return fmt.Errorf("refusing to migrate without a backup: %w", err)
		}
	}

	count, err := m.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
