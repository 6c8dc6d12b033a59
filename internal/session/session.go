// Package session tracks the connected wallet address.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
)

// c32 alphabet used by Stacks addresses
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ErrInvalidAddress  = errors.New("not a valid Stacks address")
	ErrNetworkMismatch = errors.New("address belongs to a different network")
)

// Store is the slice of storage.Provider the manager needs
type Store interface {
	GetSession() (models.Session, error)
	SaveSession(models.Session) error
	ClearSession() error
}

type Manager struct {
	mu      sync.RWMutex
	store   Store
	network string
	current models.Session
}

// NewManager loads the persisted session. network restricts accepted
// address prefixes; an empty network accepts both.
func NewManager(store Store, network string) (*Manager, error) {
	sess, err := store.GetSession()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Manager{store: store, network: network, current: sess}, nil
}

// Current returns the session in effect
func (m *Manager) Current() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Connect validates address and persists it as the active session
func (m *Manager) Connect(address string, walletType models.WalletType) (models.Session, error) {
	address = strings.ToUpper(strings.TrimSpace(address))
	network, err := AddressNetwork(address)
	if err != nil {
		return models.Session{}, err
	}
	if m.network != "" && network != m.network {
		return models.Session{}, fmt.Errorf("%w: %s is a %s address", ErrNetworkMismatch, models.TruncateAddress(address, 4), network)
	}
	if walletType == "" {
		walletType = models.WalletCLI
	}

	sess := models.Session{Connected: true, Address: address, WalletType: walletType}
	if err := m.store.SaveSession(sess); err != nil {
		return models.Session{}, err
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	logger.Debug("Wallet connected", "address", address, "wallet", walletType)
	return sess, nil
}

// Disconnect clears the session in memory and in storage
func (m *Manager) Disconnect() error {
	if err := m.store.ClearSession(); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = models.Session{}
	m.mu.Unlock()
	return nil
}

// AddressNetwork checks the shape of a Stacks principal and returns the
// network its version prefix belongs to.
func AddressNetwork(address string) (string, error) {
	if len(address) < 39 || len(address) > 41 {
		return "", fmt.Errorf("%w: expected 39-41 characters, got %d", ErrInvalidAddress, len(address))
	}

	var network string
	switch address[:2] {
	case "SP", "SM":
		network = constants.NetworkMainnet
	case "ST", "SN":
		network = constants.NetworkTestnet
	default:
		return "", fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddress, address[:2])
	}

	for _, r := range address[1:] {
		if !strings.ContainsRune(c32Alphabet, r) {
			return "", fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, r)
		}
	}
	return network, nil
}

// ParseWalletType accepts the wallet tags stored with a session
func ParseWalletType(s string) (models.WalletType, error) {
	switch wt := models.WalletType(strings.ToLower(strings.TrimSpace(s))); wt {
	case "":
		return models.WalletCLI, nil
	case models.WalletStacksConnect, models.WalletReown, models.WalletCLI:
		return wt, nil
	default:
		return "", fmt.Errorf("unknown wallet type %q", s)
	}
}
