package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/flagx"
)

// Config holds runtime settings for the dealwatch CLI.
type Config struct {
	RPCURL       string
	GRPCAddr     string
	GRPCInsecure bool
	APIToken     string

	PackageID string
	Address   string

	EventPageSize  int
	RequestTimeout time.Duration

	SuiBinary string
	GasBudget uint64

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// LoadDefaults points c at the public testnet full node.
func (c *Config) LoadDefaults() {
	c.RPCURL = "https://fullnode.testnet.sui.io:443"
	c.GRPCAddr = "fullnode.testnet.sui.io:443"
	c.GRPCInsecure = false
	c.EventPageSize = 50
	c.RequestTimeout = 30 * time.Second
	c.SuiBinary = "sui"
	c.GasBudget = 10_000_000
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, the environment (optionally
// seeded from a .env file), a JSON or YAML config file and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadEnvFile(flagx.EnvFile(args)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, flagx.ConfigFile(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and normalizes addresses in place.
func (c *Config) Validate() error {
	var errs []error

	if c.PackageID == "" {
		errs = append(errs, errors.New("package id is required"))
	} else if pkg, err := models.NormalizeAddress(c.PackageID); err != nil {
		errs = append(errs, fmt.Errorf("package id %q: %w", c.PackageID, err))
	} else {
		c.PackageID = pkg
	}

	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	} else if addr, err := models.NormalizeAddress(c.Address); err != nil {
		errs = append(errs, fmt.Errorf("address %q: %w", c.Address, err))
	} else {
		c.Address = addr
	}

	if c.RPCURL == "" {
		errs = append(errs, errors.New("json-rpc url is required"))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}
	if c.EventPageSize < 1 || c.EventPageSize > 50 {
		errs = append(errs, fmt.Errorf("event page size %d out of range 1..50", c.EventPageSize))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q: want text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}
