// Package config defines the top-level configuration for the hedger
// execution service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by HEDGER_* environment variables.
type Config struct {
	Wallet     WalletConfig     `toml:"wallet"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Execution  ExecutionConfig  `toml:"execution"`
	Supabase   SupabaseConfig   `toml:"supabase"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	LogLevel   string           `toml:"log_level"`
}

// WalletConfig holds the Ethereum signing credential sources.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PolymarketConfig holds the CLOB endpoint and chain/signing domain
// parameters. The EIP-712 fields are static configuration, not discovered at
// runtime.
type PolymarketConfig struct {
	ClobHost          string `toml:"clob_host"`
	RpcURL            string `toml:"rpc_url"`
	ChainID           int    `toml:"chain_id"`
	Eip712Name        string `toml:"eip712_name"`
	Eip712Version     string `toml:"eip712_version"`
	VerifyingContract string `toml:"verifying_contract"`
}

// ExecutionConfig holds the engine's order defaults and safety limits.
type ExecutionConfig struct {
	TTLSeconds       int     `toml:"ttl_seconds"`
	MaxSlippageBps   int     `toml:"max_slippage_bps"`
	MaxOrderNotional float64 `toml:"max_order_notional"`
	AllowMissingBook bool    `toml:"allow_missing_book"`
	// RateLimitPerSec caps execute-order calls per maker when Redis is
	// configured; 0 disables the limiter.
	RateLimitPerSec int `toml:"rate_limit_per_sec"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters for the
// optional execution audit store. Leave DSN and Host empty to disable.
type SupabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the optional rate
// limiter. Leave Addr empty to disable.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds the HTTP API server configuration.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// Defaults returns the built-in configuration defaults.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost: "https://clob.polymarket.com",
			ChainID:  137,
		},
		Execution: ExecutionConfig{
			TTLSeconds:       600,
			MaxSlippageBps:   100,
			MaxOrderNotional: 500,
			AllowMissingBook: false,
			RateLimitPerSec:  10,
		},
		Supabase: SupabaseConfig{
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for consistency and required fields,
// returning a single error listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Wallet — one credential source must be specified.
	if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
		errs = append(errs, "wallet: either private_key or encrypted_key_path must be set")
	}
	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}

	// Polymarket endpoints and signing domain.
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.RpcURL == "" {
		errs = append(errs, "polymarket: rpc_url must not be empty")
	}
	if c.Polymarket.ChainID <= 0 {
		errs = append(errs, "polymarket: chain_id must be positive")
	}
	if c.Polymarket.Eip712Name == "" || c.Polymarket.Eip712Version == "" || c.Polymarket.VerifyingContract == "" {
		errs = append(errs, "polymarket: eip712_name, eip712_version, and verifying_contract are all required for signing")
	}

	// Execution limits.
	if c.Execution.TTLSeconds <= 0 {
		errs = append(errs, "execution: ttl_seconds must be positive")
	}
	if c.Execution.MaxSlippageBps <= 0 {
		errs = append(errs, "execution: max_slippage_bps must be positive")
	}
	if c.Execution.MaxOrderNotional <= 0 {
		errs = append(errs, "execution: max_order_notional must be positive")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AuditEnabled reports whether the execution audit store should be wired.
func (c *Config) AuditEnabled() bool {
	return c.Supabase.DSN != "" || c.Supabase.Host != ""
}

// RateLimitEnabled reports whether the Redis-backed rate limiter should be
// wired.
func (c *Config) RateLimitEnabled() bool {
	return c.Redis.Addr != "" && c.Execution.RateLimitPerSec > 0
}
