package postgres

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pledges {
		var completedAt sql.NullInt64
		if p.CompletedAt != nil {
			completedAt = sql.NullInt64{Int64: *p.CompletedAt, Valid: true}
		}
		if _, err := stmt.Exec(int64(p.ID), p.Creator, p.Message, string(p.Category), int64(p.Vouches), p.Completed, p.CreatedAt, completedAt); err != nil {
			return fmt.Errorf("failed to cache pledge %d: %w", p.ID, err)
		}
	}

	if err := upsertValue(tx, constants.SnapshotKey, meta); err != nil {
		return err
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
		var id, vouches int64
		var category string
		var completedAt sql.NullInt64
		if err := rows.Scan(&id, &p.Creator, &p.Message, &category, &vouches, &p.Completed, &p.CreatedAt, &completedAt); err != nil {
			return snap, err
		}
		p.ID = uint64(id)
		p.Vouches = uint64(vouches)
		p.Category = models.Category(category)
		if completedAt.Valid {
			ts := completedAt.Int64
			p.CompletedAt = &ts
		}
		snap.Pledges = append(snap.Pledges, p)
	}
	return snap, rows.Err()
}
