package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/keyring"
	"github.com/julianstephens/stackspledge/internal/session"
)

type DoctorCmd struct {
	Offline bool `help:"Skip the ledger gateway check."`
}

type check struct {
	name     string
	needsDB  bool
	needsCfg bool
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	checks := []check{
		{name: "Configuration", run: checkConfig},
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Wallet session", needsDB: true, warnOnly: true, run: checkSession},
		{name: "Pending transactions", needsDB: true, warnOnly: true, run: checkPendingTransactions},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
		{name: "Clock", run: func(*cli.Context) error { return checkClock(time.Now()) }},
	}
	if !cmd.Offline {
		checks = append(checks, check{name: "Ledger gateway", needsCfg: true, run: checkGateway})
	}
	return checks
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	configValid := true

	for _, c := range cmd.checks() {
		if (c.needsDB && !dbReachable) || (c.needsCfg && !configValid) {
			reason := "database not reachable"
			if c.needsCfg {
				reason = "configuration invalid"
			}
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, reason)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			switch c.name {
			case "Database reachable":
				dbReachable = false
			case "Configuration":
				configValid = false
			}
		}
	}

	ctx.Println()
	if hasError {
		return errors.New("diagnostics failed")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(Migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(Migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if len(status.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", status.Current, status.Latest)
	}
	return nil
}

func checkSession(ctx *cli.Context) error {
	sess, err := ctx.Store.GetSession()
	if err != nil {
		return err
	}
	if !sess.Active() {
		return errors.New("no wallet connected; writes are disabled")
	}
	network, err := session.AddressNetwork(sess.Address)
	if err != nil {
		return err
	}
	if network != ctx.Config.Network {
		return fmt.Errorf("connected address is %s but the client is configured for %s", network, ctx.Config.Network)
	}
	return nil
}

func checkPendingTransactions(ctx *cli.Context) error {
	pending, err := ctx.Store.GetPendingTransactions()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d transaction(s) awaiting confirmation; run 'pledge watch'", len(pending))
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring unavailable; set PLEDGE_API_KEY to authenticate with the gateway")
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkGateway(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(context.Background(), ctx.Config.RequestTimeout)
	defer cancel()
	count, err := ctx.Ledger.GetPledgeCount(c)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", ctx.Config.GatewayURL, err)
	}
	ctx.Printf("   %s has %d pledge(s)\n", ctx.Config.ContractID(), count)
	return nil
}
