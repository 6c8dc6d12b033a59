package system

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/lock"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}

	l, err := lock.Acquire(filepath.Clean(config.ExpandHome(constants.DefaultConfigDir)))
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "error", err)
		}
	}()

	col, _, err := ctx.LoadCollection()
	if err != nil {
		return err
	}
	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}

	notices := tui.NewNotifier()
	ctx.Notify = notices
	svc, err := ctx.NewService(col, 0)
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Service:  svc,
		Sessions: sessions,
		Balances: ctx.Balances,
		Watcher:  ctx.Watcher,
		Txs:      ctx.Store,
		Notices:  notices,
		Network:  ctx.Config.Network,
		Now:      ctx.Now,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	// Snapshot at process end
	ctx.SaveCollection(col)
	if runErr != nil {
		return fmt.Errorf("tui exited: %w", runErr)
	}
	return nil
}
