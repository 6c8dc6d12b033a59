// Package config resolves where the client talks to: defaults for the selected
// network, then an optional YAML file, then PLEDGE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/stackspledge/internal/constants"
)

type Config struct {
	Network         string        `yaml:"network" env:"NETWORK"`
	ContractAddress string        `yaml:"contract_address" env:"CONTRACT_ADDRESS"`
	ContractName    string        `yaml:"contract_name" env:"CONTRACT_NAME"`
	GatewayURL      string        `yaml:"gateway_url" env:"GATEWAY_URL"`
	EventsURL       string        `yaml:"events_url" env:"EVENTS_URL"`
	APIURL          string        `yaml:"api_url" env:"API_URL"`
	PageSize        int           `yaml:"page_size" env:"PAGE_SIZE"`
	ReadConcurrency int           `yaml:"read_concurrency" env:"READ_CONCURRENCY"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// EnvPrefix is prepended to every environment override
const EnvPrefix = "PLEDGE_"

// Defaults returns the configuration for mainnet with no file or env overrides
func Defaults() Config {
	return Config{
		Network:         constants.NetworkMainnet,
		ContractName:    constants.DefaultContractName,
		PageSize:        constants.DefaultPageSize,
		ReadConcurrency: constants.DefaultConcurrency,
		RequestTimeout:  constants.DefaultRequestTimeout,
	}
}

// Load reads path (if it exists) and applies environment overrides.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(ExpandHome(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Normalize fills network-derived URLs and trims trailing slashes
func (c *Config) Normalize() {
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	if c.Network == "" {
		c.Network = constants.NetworkMainnet
	}
	if c.APIURL == "" {
		if c.Network == constants.NetworkTestnet {
			c.APIURL = constants.TestnetAPIURL
		} else {
			c.APIURL = constants.MainnetAPIURL
		}
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.GatewayURL == "" {
		c.GatewayURL = c.APIURL + "/rpc"
	}
	if c.EventsURL == "" {
		c.EventsURL = websocketURL(c.APIURL) + "/events"
	}
	if c.ContractName == "" {
		c.ContractName = constants.DefaultContractName
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
}

// ErrInvalidConfig wraps every Validate failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate rejects configurations the client cannot run with
func (c Config) Validate() error {
	if c.Network != constants.NetworkMainnet && c.Network != constants.NetworkTestnet {
		return fmt.Errorf("%w: unknown network %q (must be %s or %s)", ErrInvalidConfig, c.Network, constants.NetworkMainnet, constants.NetworkTestnet)
	}
	if strings.TrimSpace(c.ContractAddress) == "" {
		return fmt.Errorf("%w: contract address is required (set contract_address or %sCONTRACT_ADDRESS)", ErrInvalidConfig, EnvPrefix)
	}
	if strings.TrimSpace(c.ContractName) == "" {
		return fmt.Errorf("%w: contract name is required", ErrInvalidConfig)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page size must be at least 1, got %d", ErrInvalidConfig, c.PageSize)
	}
	if c.ReadConcurrency < 1 {
		return fmt.Errorf("%w: read concurrency must be at least 1, got %d", ErrInvalidConfig, c.ReadConcurrency)
	}
	return nil
}

// Write saves cfg as YAML, creating parent directories. An existing file is
// left untouched and reported as false.
func Write(path string, cfg Config) (bool, error) {
	path = ExpandHome(path)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// ContractID returns the fully qualified contract identifier
func (c Config) ContractID() string {
	return c.ContractAddress + "." + c.ContractName
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func websocketURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}
