package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

func (s *Store) RecordTransaction(t models.Transaction) error {
	if t.Status == "" {
		t.Status = models.TxPending
	}
	if t.SubmittedAt.IsZero() {
		t.SubmittedAt = time.Now()
	}
	var pledgeID sql.NullInt64
	if t.PledgeID > 0 {
		pledgeID = sql.NullInt64{Int64: int64(t.PledgeID), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO transactions (txid, action, pledge_id, address, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (txid) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		t.TxID, string(t.Action), pledgeID, t.Address, t.Status, t.SubmittedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", t.TxID, err)
	}
	return nil
}

func (s *Store) UpdateTransactionStatus(txid, status string, at time.Time) error {
	res, err := s.db.Exec(
		"UPDATE transactions SET status = $1, updated_at = $2 WHERE txid = $3",
		status, at.UTC(), txid,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s not found", txid)
	}
	return nil
}

func (s *Store) GetPendingTransactions() ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT txid, action, pledge_id, address, status, submitted_at, updated_at
		FROM transactions WHERE status = $1 ORDER BY submitted_at`, models.TxPending)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var action string
		var pledgeID sql.NullInt64
		if err := rows.Scan(&t.TxID, &action, &pledgeID, &t.Address, &t.Status, &t.SubmittedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Action = models.Action(action)
		if pledgeID.Valid {
			t.PledgeID = uint64(pledgeID.Int64)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
