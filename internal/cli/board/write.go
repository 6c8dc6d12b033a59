package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stackspledge/internal/cli"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/pledges"
)

type CreateCmd struct {
	Message  []string `arg:"" help:"Pledge text (at most 140 characters)."`
	Category string   `help:"Category: health, fitness, learning, finance, career, creative, social, general." default:"general" short:"c"`
}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	category, ok := models.ParseCategory(c.Category)
	if !ok {
		return fmt.Errorf("%w %q, choose one of %s", apperrors.ErrInvalidCategory, c.Category, models.CategoryList())
	}

	col, _, err := ctx.LoadCollection()
	if err != nil {
		return err
	}
	svc, err := ctx.NewService(col, 0)
	if err != nil {
		return err
	}

	bg := context.Background()
	res, err := svc.Create(bg, strings.Join(c.Message, " "), category)
	if err != nil {
		return err
	}
	printSubmitted(ctx, res, models.ActionCreate)

	if _, err := svc.Refresh(bg); err == nil {
		ctx.SaveCollection(col)
	}
	return nil
}

type VouchCmd struct {
	ID uint64 `arg:"" help:"Pledge id."`
}

func (c *VouchCmd) Run(ctx *cli.Context) error {
	col, _, err := ctx.LoadCollection()
	if err != nil {
		return err
	}
	svc, err := ctx.NewService(col, 0)
	if err != nil {
		return err
	}

	res, err := svc.Vouch(context.Background(), c.ID)
	if err != nil {
		return err
	}
	ctx.SaveCollection(col)
	printSubmitted(ctx, res, models.ActionVouch)
	return nil
}

type CompleteCmd struct {
	ID  uint64 `arg:"" help:"Pledge id."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	col, _, err := ctx.LoadCollection()
	if err != nil {
		return err
	}
	svc, err := ctx.NewService(col, 0)
	if err != nil {
		return err
	}

	bg := context.Background()
	// Completion checks ownership against the cache, so make sure the pledge is in it
	if _, ok := col.Get(c.ID); !ok {
		if _, err := svc.Refresh(bg); err != nil {
			return err
		}
	}

	if !c.Yes {
		if p, ok := col.Get(c.ID); ok && p.CanComplete(svc.Session().Address) {
			confirmed, err := confirm(fmt.Sprintf("Mark pledge #%d complete? (%s)", c.ID, feeLine(models.ActionComplete)), p.Message)
			if err != nil {
				return err
			}
			if !confirmed {
				ctx.Println("Cancelled.")
				return nil
			}
		}
	}

	res, err := svc.Complete(bg, c.ID)
	if err != nil {
		return err
	}
	ctx.SaveCollection(col)
	printSubmitted(ctx, res, models.ActionComplete)
	return nil
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Complete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func printSubmitted(ctx *cli.Context, res pledges.Result, action models.Action) {
	ctx.Printf("Transaction: %s\n", res.TxID)
	ctx.Printf("Fees: %s\n", feeLine(action))
	ctx.Println("Follow confirmation with: pledge watch " + res.TxID)
}
