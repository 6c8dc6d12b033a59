package storage

import (
	"testing"
	"time"

	"github.com/julianstephens/stackspledge/internal/models"
)

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"~/.config/stackspledge/pledge.db", false},
		{"/tmp/pledge.db", false},
		{"postgres://user@localhost/pledge", true},
		{"postgresql://user@localhost/pledge", true},
		{"host=localhost dbname=pledge", true},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.target); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestDecodeSession(t *testing.T) {
	sess, err := DecodeSession(`{"isConnected":true,"address":"SPX","walletType":"reown"}`)
	if err != nil {
		t.Fatalf("DecodeSession() error = %v", err)
	}
	if !sess.Active() || sess.WalletType != models.WalletReown {
		t.Errorf("DecodeSession() = %+v", sess)
	}

	// Connected without an address is not a usable session
	sess, err = DecodeSession(`{"isConnected":true}`)
	if err != nil {
		t.Fatalf("DecodeSession() error = %v", err)
	}
	if sess.Connected {
		t.Error("session without address should decode as disconnected")
	}

	if _, err := DecodeSession("{not json"); err == nil {
		t.Error("DecodeSession() on malformed value should fail")
	}
}

func TestSnapshotMeta(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	value, err := EncodeSnapshotMeta(at, 3)
	if err != nil {
		t.Fatalf("EncodeSnapshotMeta() error = %v", err)
	}
	got, err := DecodeSnapshotMeta(value)
	if err != nil {
		t.Fatalf("DecodeSnapshotMeta() error = %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("saved at = %v, want %v", got, at)
	}
}
