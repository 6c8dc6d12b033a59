package board

import (
	"context"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/models"
)

type StatsCmd struct {
	Offline bool `help:"Use the cached pledges without contacting the ledger."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	col, _, err := ctx.LoadCollection()
	if err != nil {
		return err
	}
	if !c.Offline {
		svc, err := ctx.NewService(col, 0)
		if err != nil {
			return err
		}
		if _, err := svc.Refresh(context.Background()); err != nil {
			return err
		}
		ctx.SaveCollection(col)
	}

	ctx.Println(cli.RenderStats(col.Stats()))

	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	sess := sessions.Current()
	if !sess.Active() {
		return nil
	}

	us := col.UserStats(sess.Address)
	ctx.Println()
	ctx.Printf("Your activity (%s)\n", models.TruncateAddress(sess.Address, 4))
	ctx.Printf("  Pledges created:   %d\n", us.PledgesCreated)
	ctx.Printf("  Pledges completed: %d\n", us.PledgesCompleted)
	ctx.Printf("  Vouches received:  %d\n", us.VouchesReceived)
	ctx.Printf("  Fees paid:         %s STX\n", models.FormatSTX(us.TotalFeesPaid))
	return nil
}
