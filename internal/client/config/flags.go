package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/dealwatch/internal/flagx"
)

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("dealwatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RPCURL, "rpc", cfg.RPCURL, "JSON-RPC endpoint of the full node")
	fs.StringVar(&cfg.GRPCAddr, "grpc", cfg.GRPCAddr, "host:port of the gRPC ledger service")
	fs.BoolVar(&cfg.GRPCInsecure, "grpc-insecure", cfg.GRPCInsecure, "use plaintext gRPC")
	fs.StringVar(&cfg.APIToken, "api-token", cfg.APIToken, "API key sent to the node")
	fs.StringVar(&cfg.PackageID, "package", cfg.PackageID, "id of the package publishing the escrow and swap modules")
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address whose deals are shown")
	fs.IntVar(&cfg.EventPageSize, "page-size", cfg.EventPageSize, "events per page (max 50)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "timeout of one command")
	fs.StringVar(&cfg.SuiBinary, "sui", cfg.SuiBinary, "sui CLI used for signing")
	fs.Uint64Var(&cfg.GasBudget, "gas-budget", cfg.GasBudget, "gas budget of submitted transactions")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	return fs
}

// parseFlags overlays cfg with command-line flags. Flags owned by other
// loaders (-c, -config, -env) are filtered out first. -h and -help yield
// flag.ErrHelp.
func parseFlags(cfg *Config, args []string) error {
	fs := newFlagSet(cfg)
	names, bools := flagx.Names(fs)
	help := []string{"-h", "-help", "--help"}
	names = append(names, help...)
	bools = append(bools, help...)
	return fs.Parse(flagx.FilterArgs(args, names, bools...))
}

// Usage writes the flag documentation to w.
func Usage(w io.Writer) {
	var cfg Config
	cfg.LoadDefaults()
	fs := newFlagSet(&cfg)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
