package storage

import (
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Wallet session, stored as JSON under constants.SessionKey.
	// GetSession returns a disconnected session when none is stored.
	GetSession() (models.Session, error)
	SaveSession(models.Session) error
	ClearSession() error

	// Cached pledge collection
	SaveSnapshot(pledges []models.Pledge, savedAt time.Time) error
	LoadSnapshot() (Snapshot, error)

	// Submitted transactions
	RecordTransaction(models.Transaction) error
	UpdateTransactionStatus(txid, status string, at time.Time) error
	GetPendingTransactions() ([]models.Transaction, error)

	// Utils
	GetConfigPath() string
}
