// Package storage defines the local persistence boundary: the wallet session,
// the last cached pledge collection, and submitted transactions.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

// Snapshot is the pledge collection as saved at the end of the last session
type Snapshot struct {
	Pledges []models.Pledge
	SavedAt time.Time
}

// Empty reports whether nothing was ever saved
func (s Snapshot) Empty() bool {
	return s.SavedAt.IsZero() && len(s.Pledges) == 0
}

type snapshotMeta struct {
	SavedAt time.Time `json:"saved_at"`
	Count   int       `json:"count"`
}

// IsPostgres reports whether target is a PostgreSQL connection string rather than a file path
func IsPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") ||
		strings.HasPrefix(target, "postgresql://") ||
		strings.Contains(target, "host=")
}

// EncodeSession serializes a session for the kv table
func EncodeSession(sess models.Session) (string, error) {
	b, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(b), nil
}

// DecodeSession parses a stored session. A session without an address is
// reported as disconnected.
func DecodeSession(value string) (models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal([]byte(value), &sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Address == "" {
		sess.Connected = false
	}
	return sess, nil
}

// EncodeSnapshotMeta serializes the snapshot bookkeeping stored in the kv table
func EncodeSnapshotMeta(savedAt time.Time, count int) (string, error) {
	b, err := json.Marshal(snapshotMeta{SavedAt: savedAt.UTC(), Count: count})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot metadata: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshotMeta returns the saved-at time from snapshot bookkeeping
func DecodeSnapshotMeta(value string) (time.Time, error) {
	var meta snapshotMeta
	if err := json.Unmarshal([]byte(value), &meta); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode snapshot metadata: %w", err)
	}
	return meta.SavedAt, nil
}
