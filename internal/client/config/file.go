package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/dealwatch/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Absent keys leave the current
// value untouched. Durations accept "30s" or integer nanoseconds.
type FileConfig struct {
	RPCURL         *string         `json:"rpc_url" yaml:"rpc_url"`
	GRPCAddr       *string         `json:"grpc_addr" yaml:"grpc_addr"`
	GRPCInsecure   *bool           `json:"grpc_insecure" yaml:"grpc_insecure"`
	APIToken       *string         `json:"api_token" yaml:"api_token"`
	PackageID      *string         `json:"package_id" yaml:"package_id"`
	Address        *string         `json:"address" yaml:"address"`
	EventPageSize  *int            `json:"event_page_size" yaml:"event_page_size"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SuiBinary      *string         `json:"sui_binary" yaml:"sui_binary"`
	GasBudget      *uint64         `json:"gas_budget" yaml:"gas_budget"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
	MetricsAddr    *string         `json:"metrics_addr" yaml:"metrics_addr"`
}

// parseFile overlays cfg with the file at path. Files ending in .yaml or
// .yml are YAML, anything else is JSON. An empty path is a no-op.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.RPCURL, fc.RPCURL)
	set(&cfg.GRPCAddr, fc.GRPCAddr)
	set(&cfg.GRPCInsecure, fc.GRPCInsecure)
	set(&cfg.APIToken, fc.APIToken)
	set(&cfg.PackageID, fc.PackageID)
	set(&cfg.Address, fc.Address)
	set(&cfg.EventPageSize, fc.EventPageSize)
	set(&cfg.SuiBinary, fc.SuiBinary)
	set(&cfg.GasBudget, fc.GasBudget)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.MetricsAddr, fc.MetricsAddr)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}
