package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetAPIKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAPIKey("  sk-test-1234 "); err != nil {
		t.Fatalf("SetAPIKey() failed: %v", err)
	}

	got, err := GetAPIKey()
	if err != nil {
		t.Fatalf("GetAPIKey() failed: %v", err)
	}
	if got != "sk-test-1234" {
		t.Errorf("GetAPIKey() = %q, want trimmed key", got)
	}
}

func TestSetAPIKeyEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAPIKey("   "); err == nil {
		t.Error("SetAPIKey(blank) should return an error")
	}
}

func TestGetAPIKeyNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteAPIKey()

	if _, err := GetAPIKey(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAPIKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteAPIKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAPIKey("sk-delete"); err != nil {
		t.Fatalf("SetAPIKey() failed: %v", err)
	}
	if err := DeleteAPIKey(); err != nil {
		t.Fatalf("DeleteAPIKey() failed: %v", err)
	}
	if err := DeleteAPIKey(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteAPIKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolveAPIKey(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteAPIKey()

	t.Setenv(APIKeyEnv, "")
	key, err := ResolveAPIKey()
	if err != nil || key != "" {
		t.Errorf("ResolveAPIKey() with nothing stored = %q, %v", key, err)
	}

	if err := SetAPIKey("sk-stored"); err != nil {
		t.Fatalf("SetAPIKey() failed: %v", err)
	}
	if key, _ := ResolveAPIKey(); key != "sk-stored" {
		t.Errorf("ResolveAPIKey() = %q, want stored key", key)
	}

	t.Setenv(APIKeyEnv, "sk-env")
	if key, _ := ResolveAPIKey(); key != "sk-env" {
		t.Errorf("ResolveAPIKey() = %q, want env override", key)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() should be true with mock keyring")
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"abc":         "***",
		"sk-abcd1234": "*******1234",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
