// Package config loads runtime configuration for the dealwatch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with DEALWATCH_. A .env file in the
//     working directory, or the one given with -env, is loaded first and
//     never overrides variables that are already set.
//  3. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags, which override earlier values.
//
// # File schema
//
//	rpc_url: https://fullnode.testnet.sui.io:443
//	grpc_addr: fullnode.testnet.sui.io:443
//	package_id: "0x…"
//	address: "0x…"
//	request_timeout: 30s
//
// Durations can be strings like "30s" or integer nanoseconds.
package config
