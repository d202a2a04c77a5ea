package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HEDGER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing file is not an error when env overrides supply everything: pass
// an empty path to skip the TOML step entirely.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HEDGER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "HEDGER_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.PrivateKey, "POLYMARKET_PRIVATE_KEY") // compatibility alias
	setStr(&cfg.Wallet.EncryptedKeyPath, "HEDGER_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "HEDGER_WALLET_KEY_PASSWORD")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "HEDGER_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.ClobHost, "POLYMARKET_CLOB_URL") // compatibility alias
	setStr(&cfg.Polymarket.RpcURL, "HEDGER_POLYMARKET_RPC_URL")
	setStr(&cfg.Polymarket.RpcURL, "POLYGON_RPC_URL") // compatibility alias
	setInt(&cfg.Polymarket.ChainID, "HEDGER_POLYMARKET_CHAIN_ID")
	setStr(&cfg.Polymarket.Eip712Name, "HEDGER_POLYMARKET_EIP712_NAME")
	setStr(&cfg.Polymarket.Eip712Version, "HEDGER_POLYMARKET_EIP712_VERSION")
	setStr(&cfg.Polymarket.VerifyingContract, "HEDGER_POLYMARKET_VERIFIER")

	// ── Execution ──
	setInt(&cfg.Execution.TTLSeconds, "HEDGER_EXECUTION_TTL_SECONDS")
	setInt(&cfg.Execution.MaxSlippageBps, "HEDGER_EXECUTION_MAX_SLIPPAGE_BPS")
	setFloat64(&cfg.Execution.MaxOrderNotional, "HEDGER_EXECUTION_MAX_ORDER_NOTIONAL")
	setBool(&cfg.Execution.AllowMissingBook, "HEDGER_EXECUTION_ALLOW_MISSING_BOOK")
	setInt(&cfg.Execution.RateLimitPerSec, "HEDGER_EXECUTION_RATE_LIMIT_PER_SEC")

	// ── Supabase ──
	setStr(&cfg.Supabase.DSN, "HEDGER_SUPABASE_DSN")
	setStr(&cfg.Supabase.Host, "HEDGER_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "HEDGER_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "HEDGER_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "HEDGER_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "HEDGER_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "HEDGER_SUPABASE_SSLMODE")
	setInt(&cfg.Supabase.PoolMaxConns, "HEDGER_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "HEDGER_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "HEDGER_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "HEDGER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HEDGER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HEDGER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HEDGER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "HEDGER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "HEDGER_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "HEDGER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "HEDGER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "HEDGER_SERVER_API_KEY")

	// ── Misc ──
	setStr(&cfg.LogLevel, "HEDGER_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
