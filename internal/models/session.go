package models

// WalletType tags how the session's address was obtained
type WalletType string

const (
	WalletStacksConnect WalletType = "stacks-connect"
	WalletReown         WalletType = "reown"
	WalletCLI           WalletType = "cli"
)

// Session is the persisted wallet session
type Session struct {
	Connected  bool       `json:"isConnected"`
	Address    string     `json:"address,omitempty"`
	WalletType WalletType `json:"walletType,omitempty"`
}

// Active reports whether writes may be attempted with this session
func (s Session) Active() bool {
	return s.Connected && s.Address != ""
}
