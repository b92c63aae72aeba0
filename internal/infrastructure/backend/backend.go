// Package backend abre el StateStore configurado por LEDGER_BACKEND.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redisstore"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Open conecta el adaptador elegido. closeFn libera las conexiones; nunca es nil.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (store repository.StateStore, closeFn func(), err error) {
	switch cfg.Ledger.Backend {
	case "", config.BackendMemory:
		log.Warn().Msg("backend en memoria: el estado se pierde al reiniciar")
		return memory.NewStateStore(), func() {}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Str("prefix", cfg.Redis.Prefix).Msg("backend redis")
		return redisstore.NewStateStore(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("esquema PostgreSQL: %w", err)
		}
		log.Info().Str("db", cfg.DB.DBName).Msg("backend postgres")
		return postgres.NewStateStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("backend desconocido %q", cfg.Ledger.Backend)
}
