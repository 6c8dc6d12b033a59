package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "stackspledge"
	BinaryName         = "pledge"
	DefaultKeyringUser = "gateway-api-key"
	DefaultConfigDir   = "~/.config/stackspledge"
	DefaultDBPath      = "~/.config/stackspledge/pledge.db"
	DefaultConfigFile  = "~/.config/stackspledge/config.yaml"
	Version            = "v0.3.0"

	// SessionKey is the namespaced key the wallet session is persisted under
	SessionKey = "stacks-pledge-wallet"
	// SnapshotKey holds the metadata of the last cached pledge collection
	SnapshotKey = "stacks-pledge-snapshot"

	// DateFormat is the display format for ledger timestamps
	DateFormat = "Jan 2, 2006"

	// Pledge constants
	MaxMessageLength   = 140
	MaxCategoryLength  = 32
	DefaultPageSize    = 50
	DefaultConcurrency = 1

	// Contract fees in micro-STX (must match the deployed contract)
	PledgeFee   int64 = 1000
	VouchFee    int64 = 500
	CompleteFee int64 = 500

	// Transaction fees in micro-STX attached to each contract call
	CreateTxFee   int64 = 200000
	VouchTxFee    int64 = 150000
	CompleteTxFee int64 = 150000

	MicroSTXPerSTX = 1_000_000

	// Network defaults
	NetworkMainnet        = "mainnet"
	NetworkTestnet        = "testnet"
	DefaultContractName   = "stacks-pledge"
	MainnetAPIURL         = "https://api.mainnet.hiro.so"
	TestnetAPIURL         = "https://api.testnet.hiro.so"
	DefaultRequestTimeout = 10 * time.Second

	// Lockfile for the interactive client
	LockfileName = "pledge-tui.lock"

	// Session States
	StatePledges SessionState = iota
	StateMine
	StateStats
	StateCreate
	StateConnect
	StateConfirmComplete
)
