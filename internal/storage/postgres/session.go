package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/storage"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertValue(db execer, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) getValue(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) GetSession() (models.Session, error) {
	value, ok, err := s.getValue(constants.SessionKey)
	if err != nil || !ok {
		return models.Session{}, err
	}
	return storage.DecodeSession(value)
}

func (s *Store) SaveSession(sess models.Session) error {
	value, err := storage.EncodeSession(sess)
	if err != nil {
		return err
	}
	return upsertValue(s.db, constants.SessionKey, value)
}

func (s *Store) ClearSession() error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = $1", constants.SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
