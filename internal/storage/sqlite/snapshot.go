package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/storage"
)

func (s *Store) SaveSnapshot(pledges []models.Pledge, savedAt time.Time) error {
	meta, err := storage.EncodeSnapshotMeta(savedAt, len(pledges))
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pledge_cache"); err != nil {
		return fmt.Errorf("failed to clear pledge cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pledge_cache (id, creator, message, category, vouches, completed, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pledges {
		var completedAt sql.NullInt64
		if p.CompletedAt != nil {
			completedAt = sql.NullInt64{Int64: *p.CompletedAt, Valid: true}
		}
		if _, err := stmt.Exec(p.ID, p.Creator, p.Message, string(p.Category), p.Vouches, p.Completed, p.CreatedAt, completedAt); err != nil {
			return fmt.Errorf("failed to cache pledge %d: %w", p.ID, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		constants.SnapshotKey, meta, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to write snapshot metadata: %w", err)
	}

	return tx.Commit()
}

func (s *Store) LoadSnapshot() (storage.Snapshot, error) {
	var snap storage.Snapshot

	value, ok, err := s.getValue(constants.SnapshotKey)
	if err != nil {
		return snap, err
	}
	if ok {
		if snap.SavedAt, err = storage.DecodeSnapshotMeta(value); err != nil {
			return snap, err
		}
	}

	rows, err := s.db.Query(`
		SELECT id, creator, message, category, vouches, completed, created_at, completed_at
		FROM pledge_cache ORDER BY id DESC`)
	if err != nil {
		return snap, fmt.Errorf("failed to read pledge cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Pledge
		var category string
		var completedAt sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Creator, &p.Message, &category, &p.Vouches, &p.Completed, &p.CreatedAt, &completedAt); err != nil {
			return snap, err
		}
		p.Category = models.Category(category)
		if completedAt.Valid {
			ts := completedAt.Int64
			p.CompletedAt = &ts
		}
		snap.Pledges = append(snap.Pledges, p)
	}
	return snap, rows.Err()
}
