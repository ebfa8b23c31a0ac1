package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "DEALWATCH_"

// loadEnvFile exports the variables of a .env file into the process
// environment without overriding variables that are already set. With an
// empty path ".env" is tried and silently skipped when missing.
func loadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with DEALWATCH_* environment variables.
func parseEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	str("RPC_URL", &cfg.RPCURL)
	str("GRPC_ADDR", &cfg.GRPCAddr)
	str("API_TOKEN", &cfg.APIToken)
	str("PACKAGE_ID", &cfg.PackageID)
	str("ADDRESS", &cfg.Address)
	str("SUI_BIN", &cfg.SuiBinary)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("METRICS_ADDR", &cfg.MetricsAddr)

	if v, ok := os.LookupEnv(envPrefix + "GRPC_INSECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sGRPC_INSECURE: %w", envPrefix, err)
		}
		cfg.GRPCInsecure = b
	}
	if v, ok := os.LookupEnv(envPrefix + "PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPAGE_SIZE: %w", envPrefix, err)
		}
		cfg.EventPageSize = n
	}
	if v, ok := os.LookupEnv(envPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv(envPrefix + "GAS_BUDGET"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sGAS_BUDGET: %w", envPrefix, err)
		}
		cfg.GasBudget = n
	}
	return nil
}
