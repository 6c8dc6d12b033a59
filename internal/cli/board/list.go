package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/stackspledge/internal/cli"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/models"
)

type ListCmd struct {
	Limit   int  `help:"Number of newest pledges to read (defaults to page_size)." short:"n"`
	Offline bool `help:"Show the cached pledges without contacting the ledger."`
	Mine    bool `help:"Only show pledges created by the connected wallet."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	address := sessions.Current().Address
	if c.Mine && !sessions.Current().Active() {
		return apperrors.ErrUnauthenticated
	}

	col, snap, err := ctx.LoadCollection()
	if err != nil {
		return err
	}

	if c.Offline {
		if snap.Empty() {
			ctx.Println("No cached pledges. Run 'pledge list' while online first.")
			return nil
		}
		ctx.Printf("Cached %s\n", snap.SavedAt.Local().Format("Jan 2, 2006 15:04"))
	} else {
		svc, err := ctx.NewService(col, c.Limit)
		if err != nil {
			return err
		}
		if _, err := svc.Refresh(context.Background()); err != nil {
			return err
		}
		ctx.SaveCollection(col)
	}

	list := col.Snapshot()
	if c.Mine {
		list = col.ByCreator(address)
	}
	if len(list) == 0 {
		ctx.Println("No pledges yet. Be the first to make one!")
		return nil
	}

	for _, p := range list {
		ctx.Println(cli.RenderPledge(p, address))
	}
	ctx.Println()
	ctx.Println(cli.RenderStats(models.ComputeStats(list)))
	return nil
}

type ShowCmd struct {
	ID uint64 `arg:"" help:"Pledge id."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	p, err := ctx.Ledger.GetPledge(bg, c.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("pledge %d: %w", c.ID, err)
	}
	if err != nil {
		return apperrors.Remote(ledger.FnGetPledge, err)
	}

	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	sess := sessions.Current()

	ctx.Println(cli.RenderPledge(*p, sess.Address))
	ctx.Printf("Creator:  %s\n", p.Creator)
	ctx.Printf("Created:  %s\n", models.FormatTimestamp(p.CreatedAt))
	if p.CompletedAt != nil {
		ctx.Printf("Finished: %s\n", models.FormatTimestamp(*p.CompletedAt))
	}

	if !sess.Active() {
		return nil
	}
	switch {
	case p.CanComplete(sess.Address):
		ctx.Printf("You can complete this pledge: pledge complete %d\n", p.ID)
	case p.CanVouch(sess.Address):
		vouched, err := ctx.Ledger.HasVouched(bg, p.ID, sess.Address)
		if err != nil {
			return apperrors.Remote(ledger.FnHasVouched, err)
		}
		if vouched {
			ctx.Println("You have vouched for this pledge.")
		} else {
			ctx.Printf("Vouch for it: pledge vouch %d (%s)\n", p.ID, feeLine(models.ActionVouch))
		}
	}
	return nil
}

func feeLine(action models.Action) string {
	return fmt.Sprintf("fee %s STX + %s STX network", models.FormatSTX(action.ContractFee()), models.FormatSTX(action.TxFee()))
}
