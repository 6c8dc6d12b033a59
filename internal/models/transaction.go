package models

import (
	"strings"
	"time"
)

// Transaction statuses as reported by the events endpoint
const (
	TxPending = "pending"
	TxSuccess = "success"
)

// Transaction is a submitted write tracked until it confirms or drops
type Transaction struct {
	TxID        string
	Action      Action
	PledgeID    uint64
	Address     string
	Status      string
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// Final reports whether the transaction reached a terminal status
func (t Transaction) Final() bool {
	return t.Status == TxSuccess ||
		strings.HasPrefix(t.Status, "abort_") ||
		strings.HasPrefix(t.Status, "dropped_")
}
