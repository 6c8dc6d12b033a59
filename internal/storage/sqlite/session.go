package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/storage"
)

func (s *Store) getValue(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setValue(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
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
	return s.setValue(constants.SessionKey, value)
}

func (s *Store) ClearSession() error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", constants.SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
