package postgres

import (
	"os"
	"testing"
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

// Set POSTGRES_TEST_URL to run these tests, for example
// POSTGRES_TEST_URL="postgres://pledge_user@localhost:5432/pledge_test?sslmode=disable"
func setupIntegrationStore(t *testing.T) *Store {
	t.Helper()
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		store.db.Exec("DELETE FROM pledge_cache")
		store.db.Exec("DELETE FROM transactions")
		store.db.Exec("DELETE FROM kv")
		store.Close()
	})
	return store
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	store := setupIntegrationStore(t)

	want := models.Session{Connected: true, Address: "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", WalletType: models.WalletCLI}
	if err := store.SaveSession(want); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	got, err := store.GetSession()
	if err != nil || got != want {
		t.Fatalf("GetSession() = %+v, %v, want %+v", got, err, want)
	}

	if err := store.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	got, _ = store.GetSession()
	if got.Connected {
		t.Error("session still connected after ClearSession()")
	}
}

func TestIntegration_SnapshotAndTransactions(t *testing.T) {
	store := setupIntegrationStore(t)

	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pledges := []models.Pledge{
		{ID: 1, Creator: "STA", Message: "Ship it", Category: models.Category("work"), CreatedAt: 1},
		{ID: 3, Creator: "STB", Message: "Sleep more", Category: models.Category("health"), Vouches: 5, CreatedAt: 3},
	}
	if err := store.SaveSnapshot(pledges, savedAt); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	snap, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Pledges) != 2 || snap.Pledges[0].ID != 3 || snap.Pledges[0].Vouches != 5 {
		t.Errorf("LoadSnapshot() = %+v", snap.Pledges)
	}

	if err := store.RecordTransaction(models.Transaction{TxID: "0x01", Action: models.ActionComplete, PledgeID: 1, Address: "STA"}); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if err := store.UpdateTransactionStatus("0x01", "abort_by_response", time.Now()); err != nil {
		t.Fatalf("UpdateTransactionStatus() error = %v", err)
	}
	pending, err := store.GetPendingTransactions()
	if err != nil || len(pending) != 0 {
		t.Errorf("GetPendingTransactions() = %+v, %v", pending, err)
	}
}
