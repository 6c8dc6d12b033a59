package wallet

import (
	"context"
	"fmt"

	"github.com/julianstephens/stackspledge/internal/cli"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/ledger"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/session"
)

type ConnectCmd struct {
	Address    string `arg:"" help:"Stacks address to act as."`
	WalletType string `help:"Wallet the address comes from: stacks-connect, reown, cli." default:"cli" name:"wallet-type"`
}

func (c *ConnectCmd) Run(ctx *cli.Context) error {
	walletType, err := session.ParseWalletType(c.WalletType)
	if err != nil {
		return err
	}
	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	sess, err := sessions.Connect(c.Address, walletType)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Connected %s (%s)\n", models.TruncateAddress(sess.Address, 4), sess.WalletType)
	return nil
}

type DisconnectCmd struct{}

func (c *DisconnectCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	if !sessions.Current().Active() {
		ctx.Println("No wallet connected.")
		return nil
	}
	if err := sessions.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	ctx.Println("✓ Wallet disconnected")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Sessions()
	if err != nil {
		return err
	}
	sess := sessions.Current()
	if !sess.Active() {
		ctx.Println("Not connected. Use 'pledge connect <address>'.")
		return nil
	}
	ctx.Printf("Address: %s\n", sess.Address)
	ctx.Printf("Wallet:  %s\n", sess.WalletType)
	ctx.Printf("Network: %s\n", ctx.Config.Network)
	return nil
}

type BalanceCmd struct {
	Address string `arg:"" optional:"" help:"Address to look up (defaults to the connected wallet)."`
}

func (c *BalanceCmd) Run(ctx *cli.Context) error {
	address := c.Address
	if address == "" {
		sessions, err := ctx.Sessions()
		if err != nil {
			return err
		}
		sess := sessions.Current()
		if !sess.Active() {
			return apperrors.ErrUnauthenticated
		}
		address = sess.Address
	} else if _, err := session.AddressNetwork(address); err != nil {
		return err
	}

	balance := ledger.BalanceOrZero(context.Background(), ctx.Balances, address)
	ctx.Printf("%s STX\n", models.FormatSTX(balance))
	return nil
}
