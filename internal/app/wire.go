package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calverly/hedger/internal/cache/redis"
	"github.com/calverly/hedger/internal/config"
	"github.com/calverly/hedger/internal/crypto"
	"github.com/calverly/hedger/internal/domain"
	"github.com/calverly/hedger/internal/executor"
	"github.com/calverly/hedger/internal/platform/polymarket"
	"github.com/calverly/hedger/internal/service"
	"github.com/calverly/hedger/internal/store/postgres"
)

// Dependencies bundles everything the server needs to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Executions *service.ExecutionService
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Wallet + signer ---
	privateKey, err := crypto.LoadKey(crypto.KeySource{
		RawPrivateKey:    cfg.Wallet.PrivateKey,
		EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
		KeyPassword:      cfg.Wallet.KeyPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: load key: %w", err)
	}

	signer, err := crypto.NewSigner(privateKey, crypto.DomainParams{
		Name:              cfg.Polymarket.Eip712Name,
		Version:           cfg.Polymarket.Eip712Version,
		ChainID:           cfg.Polymarket.ChainID,
		VerifyingContract: cfg.Polymarket.VerifyingContract,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: signer: %w", err)
	}

	// --- Venue client + engine ---
	clob := polymarket.NewClobClient(cfg.Polymarket.ClobHost)

	engine, err := executor.New(executor.Config{
		RPCURL:             cfg.Polymarket.RpcURL,
		ChainID:            cfg.Polymarket.ChainID,
		DomainName:         cfg.Polymarket.Eip712Name,
		DomainVersion:      cfg.Polymarket.Eip712Version,
		VerifyingContract:  cfg.Polymarket.VerifyingContract,
		DefaultTTLSeconds:  cfg.Execution.TTLSeconds,
		DefaultSlippageBps: cfg.Execution.MaxSlippageBps,
		MaxOrderNotional:   cfg.Execution.MaxOrderNotional,
		AllowMissingBook:   cfg.Execution.AllowMissingBook,
	}, clob, clob, clob, signer, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: executor: %w", err)
	}

	// --- PostgreSQL audit store (optional) ---
	var store domain.ExecutionStore
	if cfg.AuditEnabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Supabase.DSN,
			Host:     cfg.Supabase.Host,
			Port:     cfg.Supabase.Port,
			Database: cfg.Supabase.Database,
			User:     cfg.Supabase.User,
			Password: cfg.Supabase.Password,
			SSLMode:  cfg.Supabase.SSLMode,
			MaxConns: cfg.Supabase.PoolMaxConns,
			MinConns: cfg.Supabase.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Supabase.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		store = postgres.NewExecutionStore(pgClient.Pool())
	}

	// --- Redis rate limiter (optional) ---
	var limiter domain.RateLimiter
	if cfg.RateLimitEnabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		limiter = redis.NewRateLimiter(redisClient, "hedger:execute")
	}

	deps := &Dependencies{
		Executions: service.New(engine, service.Options{
			Store:      store,
			Limiter:    limiter,
			RatePerSec: cfg.Execution.RateLimitPerSec,
			Logger:     logger,
		}),
	}

	return deps, cleanup, nil
}
