package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/ledger/ledgertest"
	"github.com/julianstephens/stackspledge/internal/storage/sqlite"
)

const testAddr = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

func setupTestContext(t *testing.T) (*Context, *ledgertest.Fake, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Defaults()
	cfg.ContractAddress = testAddr
	cfg.Normalize()

	fake := ledgertest.New()
	var out bytes.Buffer
	ctx := &Context{
		Store:    store,
		Config:   cfg,
		Out:      &out,
		Err:      &out,
		Ledger:   fake,
		Balances: fake,
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
	}
	return ctx, fake, &out
}
