package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/stackspledge/internal/errors"
)

type DebugCmd struct {
	DBPath      *DebugDBPathCmd      `cmd:"" help:"Show database path."`
	DumpPledge  *DebugDumpPledgeCmd  `cmd:"" help:"Dump a pledge as read from the ledger as JSON."`
	DumpSession *DebugDumpSessionCmd `cmd:"" help:"Dump the persisted wallet session as JSON."`
	DumpConfig  *DebugDumpConfigCmd  `cmd:"" help:"Dump the effective configuration as JSON."`
}

func (c *Context) printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return ctx.printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpPledgeCmd struct {
	ID uint64 `arg:"" help:"Pledge id."`
}

func (cmd *DebugDumpPledgeCmd) Run(ctx *Context) error {
	p, err := ctx.Ledger.GetPledge(context.Background(), cmd.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("pledge %d not found", cmd.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get pledge: %w", err)
	}
	return ctx.printJSON(p)
}

type DebugDumpSessionCmd struct{}

func (cmd *DebugDumpSessionCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	sess, err := ctx.Store.GetSession()
	if err != nil {
		return err
	}
	return ctx.printJSON(sess)
}

type DebugDumpConfigCmd struct{}

func (cmd *DebugDumpConfigCmd) Run(ctx *Context) error {
	return ctx.printJSON(ctx.Config)
}
