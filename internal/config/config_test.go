package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
network: testnet
contract_address: ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM
page_size: 20
read_concurrency: 4
request_timeout: 3s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want testnet", cfg.Network)
	}
	if cfg.APIURL != "https://api.testnet.hiro.so" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.GatewayURL != "https://api.testnet.hiro.so/rpc" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
	if cfg.EventsURL != "wss://api.testnet.hiro.so/events" {
		t.Errorf("EventsURL = %q", cfg.EventsURL)
	}
	if cfg.PageSize != 20 || cfg.ReadConcurrency != 4 {
		t.Errorf("PageSize/ReadConcurrency = %d/%d, want 20/4", cfg.PageSize, cfg.ReadConcurrency)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.ContractID() != "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.stacks-pledge" {
		t.Errorf("ContractID() = %q", cfg.ContractID())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "contract_address: SPFILE\npage_size: 20\n")
	t.Setenv("PLEDGE_CONTRACT_ADDRESS", "SPENV")
	t.Setenv("PLEDGE_PAGE_SIZE", "5")
	t.Setenv("PLEDGE_GATEWAY_URL", "http://localhost:3999/rpc")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ContractAddress != "SPENV" {
		t.Errorf("ContractAddress = %q, want SPENV", cfg.ContractAddress)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", cfg.PageSize)
	}
	if cfg.GatewayURL != "http://localhost:3999/rpc" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PLEDGE_CONTRACT_ADDRESS", "SPENV")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Network != "mainnet" || cfg.PageSize != 50 || cfg.ReadConcurrency != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing contract", body: "network: mainnet\n", wantErr: "contract address is required"},
		{name: "bad network", body: "network: devnet\ncontract_address: SP1\n", wantErr: "unknown network"},
		{name: "bad page size", body: "contract_address: SP1\npage_size: -1\n", wantErr: "page size"},
		{name: "bad concurrency", body: "contract_address: SP1\nread_concurrency: -2\n", wantErr: "read concurrency"},
		{name: "malformed yaml", body: "network: [", wantErr: "config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/pledge.db"); got != filepath.Join(home, "x/pledge.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/tmp/pledge.db"); got != "/tmp/pledge.db" {
		t.Errorf("ExpandHome() = %q", got)
	}
}

func TestLoad_ValidationSentinel(t *testing.T) {
	t.Setenv(EnvPrefix+"CONTRACT_ADDRESS", "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() without contract error = %v, want ErrInvalidConfig", err)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Network = constants.NetworkTestnet
	cfg.ContractAddress = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"

	written, err := Write(path, cfg)
	if err != nil || !written {
		t.Fatalf("Write() = %v, %v", written, err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Network != constants.NetworkTestnet || loaded.ContractAddress != cfg.ContractAddress {
		t.Errorf("loaded config = %+v", loaded)
	}

	written, err = Write(path, Defaults())
	if err != nil || written {
		t.Errorf("Write() over existing file = %v, %v, want untouched", written, err)
	}
}
