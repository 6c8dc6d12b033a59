package main

import (
	"errors"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/stackspledge/internal/cli"
	"github.com/julianstephens/stackspledge/internal/cli/board"
	"github.com/julianstephens/stackspledge/internal/cli/system"
	"github.com/julianstephens/stackspledge/internal/cli/wallet"
	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/constants"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/storage"
	"github.com/julianstephens/stackspledge/internal/storage/postgres"
	"github.com/julianstephens/stackspledge/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"string" default:"~/.config/stackspledge/config.yaml"`
	DB       string `help:"SQLite database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use PGPASSWORD or .pgpass instead." name:"db" env:"PLEDGE_DB" default:"~/.config/stackspledge/pledge.db"`
	LogDebug bool   `help:"Write debug output to the log file." name:"debug"`

	Init    system.InitCmd    `cmd:"" help:"Initialize pledge storage and write a default config."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive pledge board." default:"1"`

	Connect    wallet.ConnectCmd    `cmd:"" help:"Connect a wallet address."`
	Disconnect wallet.DisconnectCmd `cmd:"" help:"Forget the connected wallet."`
	Whoami     wallet.WhoamiCmd     `cmd:"" help:"Show the connected wallet."`
	Balance    wallet.BalanceCmd    `cmd:"" help:"Show an address's STX balance."`

	List     board.ListCmd     `cmd:"" help:"List the newest pledges."`
	Show     board.ShowCmd     `cmd:"" help:"Show one pledge."`
	Create   board.CreateCmd   `cmd:"" help:"Create a pledge."`
	Vouch    board.VouchCmd    `cmd:"" help:"Vouch for someone else's pledge."`
	Complete board.CompleteCmd `cmd:"" help:"Mark your pledge as completed."`
	Stats    board.StatsCmd    `cmd:"" help:"Show board and wallet statistics."`
	Watch    board.WatchCmd    `cmd:"" help:"Follow submitted transactions until they settle."`

	APIKey system.APIKeyCmd `cmd:"" name:"apikey" help:"Manage the ledger gateway API key."`
	Debug  cli.DebugCmd     `cmd:"" help:"Debug commands for troubleshooting."`
}

// localCommands run without a contract address configured
var localCommands = map[string]bool{
	"init":       true,
	"migrate":    true,
	"doctor":     true,
	"tui":        true,
	"connect":    true,
	"disconnect": true,
	"whoami":     true,
	"apikey":     true,
	"debug":      true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.BinaryName),
		kong.Description("Public pledge board on the Stacks blockchain"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.LogDebug,
		ConfigDir: config.ExpandHome(constants.DefaultConfigDir),
	}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}

	command := "tui"
	if fields := strings.Fields(ctx.Command()); len(fields) > 0 {
		command = fields[0]
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		offline := (command == "list" && CLI.List.Offline) || (command == "stats" && CLI.Stats.Offline)
		if !errors.Is(err, config.ErrInvalidConfig) || !(localCommands[command] || offline) {
			apperrors.Fatal(err)
		}
		logger.Debug("Continuing with incomplete configuration", "command", command, "error", err)
	}

	var store storage.Provider
	if storage.IsPostgres(CLI.DB) {
		if _, err := postgres.ValidateConnString(CLI.DB); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				apperrors.Fatalf("PostgreSQL connection strings with embedded credentials are NOT allowed. Use PGPASSWORD or a .pgpass file instead.")
			}
			apperrors.Fatal(err)
		}
		store = postgres.New(CLI.DB)
	} else {
		store = sqlite.NewStore(config.ExpandHome(CLI.DB))
	}

	appCtx := cli.NewContext(store, cfg)
	CLI.Init.ConfigPath = CLI.Config

	// Init opens its own storage; the keyring commands never touch it
	if command != "init" && command != "apikey" {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	apperrors.Fatal(err)
}
